package notifier

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/rafflemonitor/internal/crawler"
)

func testItem() *crawler.RaffleItem {
	return &crawler.RaffleItem{
		URL:             "https://releases.43einhalb.com/en/product/nike-air-max-1",
		PictureURL:      "https://releases.43einhalb.com/media/air-max-1.jpg",
		Brand:           "Nike",
		Model:           "Air Max 1 Anniversary",
		ReferenceCode:   "DQ3989-100",
		Price:           "159.99",
		Currency:        crawler.CurrencyEUR,
		ClosingMonth:    "June",
		ClosingDay:      "21",
		ClosingHour:     "18",
		ClosingTimezone: "CEST",
		MinSize:         "38",
		MaxSize:         "46",
		SizeCountry:     "EU",
	}
}

func TestBuildMessage(t *testing.T) {
	want := Message{
		Text: "Raffle Monitor",
		Blocks: []Block{
			{
				Type: "section",
				Text: &TextObject{
					Type: "mrkdwn",
					Text: ":athletic_shoe: <https://releases.43einhalb.com/en/product/nike-air-max-1|Air Max 1 Anniversary>\n" +
						":shopping_bags: Nike\n" +
						":label: DQ3989-100\n" +
						":moneybag: 159.99 EUR\n" +
						":date: June 21 @ 18:00 CEST\n" +
						":straight_ruler: 38 - 46 EU",
				},
				Accessory: &Accessory{
					Type:     "image",
					ImageURL: "https://releases.43einhalb.com/media/air-max-1.jpg",
					AltText:  "Air Max 1 Anniversary",
				},
			},
			{Type: "divider"},
		},
	}

	got := BuildMessage(testItem())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildMessage() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMessageUSD(t *testing.T) {
	item := testItem()
	item.Price = "200"
	item.Currency = crawler.CurrencyUSD

	msg := BuildMessage(item)
	assert.Contains(t, msg.Blocks[0].Text.Text, ":moneybag: 200 USD")
}

func TestBuildMessageEscapesMrkdwn(t *testing.T) {
	item := testItem()
	item.Brand = "A&B"
	item.Model = "Dunk <Low> Panda"
	item.ReferenceCode = "DD1391<100>"

	text := BuildMessage(item).Blocks[0].Text.Text
	assert.Contains(t, text, "|Dunk &lt;Low&gt; Panda>\n")
	assert.Contains(t, text, ":shopping_bags: A&amp;B\n")
	assert.Contains(t, text, ":label: DD1391&lt;100&gt;\n")
	assert.Equal(t, "Dunk <Low> Panda", BuildMessage(item).Blocks[0].Accessory.AltText)
}

func TestMessageJSON(t *testing.T) {
	data, err := json.Marshal(BuildMessage(testItem()))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "Raffle Monitor", payload["text"])
	blocks := payload["blocks"].([]any)
	require.Len(t, blocks, 2)

	section := blocks[0].(map[string]any)
	assert.Equal(t, "section", section["type"])
	accessory := section["accessory"].(map[string]any)
	assert.Equal(t, "image", accessory["type"])
	assert.Equal(t, "https://releases.43einhalb.com/media/air-max-1.jpg", accessory["image_url"])
	assert.Equal(t, "Air Max 1 Anniversary", accessory["alt_text"])

	// the divider carries only its type
	assert.Equal(t, map[string]any{"type": "divider"}, blocks[1])
}
