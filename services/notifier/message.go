// Package notifier turns raffle records into Slack messages and delivers them.
package notifier

import (
	"fmt"
	"strings"

	"sjsage522/rafflemonitor/internal/crawler"
)

// MessageText is the plain-text fallback shown by clients that do not render blocks
const MessageText = "Raffle Monitor"

// Message is a Slack incoming-webhook payload
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is a Slack Block Kit layout block
type Block struct {
	Type      string      `json:"type"`
	Text      *TextObject `json:"text,omitempty"`
	Accessory *Accessory  `json:"accessory,omitempty"`
}

// TextObject is a Block Kit text object
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Accessory is the image element shown next to a section
type Accessory struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

// mrkdwnEscaper escapes the characters Slack reserves for links and mentions
var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// BuildMessage renders item as one section with an image accessory followed by a divider.
func BuildMessage(item *crawler.RaffleItem) Message {
	lines := []string{
		fmt.Sprintf(":athletic_shoe: <%s|%s>", item.URL, mrkdwnEscaper.Replace(item.Model)),
		":shopping_bags: " + mrkdwnEscaper.Replace(item.Brand),
		":label: " + mrkdwnEscaper.Replace(item.ReferenceCode),
		fmt.Sprintf(":moneybag: %s %s", item.Price, item.Currency),
		fmt.Sprintf(":date: %s %s @ %s:00 %s", item.ClosingMonth, item.ClosingDay, item.ClosingHour, item.ClosingTimezone),
		fmt.Sprintf(":straight_ruler: %s - %s %s", item.MinSize, item.MaxSize, item.SizeCountry),
	}

	return Message{
		Text: MessageText,
		Blocks: []Block{
			{
				Type: "section",
				Text: &TextObject{
					Type: "mrkdwn",
					Text: strings.Join(lines, "\n"),
				},
				Accessory: &Accessory{
					Type:     "image",
					ImageURL: item.PictureURL,
					AltText:  item.Model,
				},
			},
			{Type: "divider"},
		},
	}
}
