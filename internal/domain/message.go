package domain

import (
	"strings"
	"time"
)

// Channel is a delivery medium a template can be sent through.
type Channel string

const (
	ChannelWhatsApp     Channel = "WhatsApp"
	ChannelSMS          Channel = "SMS"
	ChannelEmail        Channel = "Email"
	ChannelNotification Channel = "Notification"
)

// DispatchOrder is the order in which channels of a template are evaluated.
var DispatchOrder = []Channel{ChannelWhatsApp, ChannelSMS, ChannelEmail, ChannelNotification}

func (c Channel) Valid() bool {
	switch c {
	case ChannelWhatsApp, ChannelSMS, ChannelEmail, ChannelNotification:
		return true
	}
	return false
}

// UsesPhone reports whether the channel addresses recipients by phone number.
func (c Channel) UsesPhone() bool {
	return c != ChannelEmail
}

// Flag is the stored Yes/No switch of a template channel.
type Flag string

const (
	FlagYes Flag = "Yes"
	FlagNo  Flag = "No"
)

func (f Flag) Enabled() bool {
	return f == FlagYes
}

type MessageTemplate struct {
	ID                  int64     `db:"id" json:"id"`
	SendSMS             Flag      `db:"send_sms" json:"sendSms"`
	SendWhatsApp        Flag      `db:"send_whatsapp" json:"sendWhatsapp"`
	SendEmail           Flag      `db:"send_email" json:"sendEmail"`
	SendNotification    Flag      `db:"send_notification" json:"sendNotification"`
	SMSContent          *string   `db:"sms_content" json:"smsContent,omitempty"`
	SMSTemplateID       *string   `db:"sms_template_id" json:"smsTemplateId,omitempty"`
	WhatsAppContent     *string   `db:"whatsapp_content" json:"whatsappContent,omitempty"`
	MailSubject         *string   `db:"mail_subject" json:"mailSubject,omitempty"`
	MailContent         *string   `db:"mail_content" json:"mailContent,omitempty"`
	NotificationTitle   *string   `db:"notification_title" json:"notificationTitle,omitempty"`
	NotificationContent *string   `db:"notification_content" json:"notificationContent,omitempty"`
	Keywords            *string   `db:"keywords" json:"keywords,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// ChannelContent is the unrendered material a template holds for one channel.
type ChannelContent struct {
	Enabled bool
	Body    string
	Subject string
	Title   string
}

// Complete reports whether the channel has the text it needs: a body, and a
// subject for Email.
func (c ChannelContent) Complete(channel Channel) bool {
	if strings.TrimSpace(c.Body) == "" {
		return false
	}
	return channel != ChannelEmail || strings.TrimSpace(c.Subject) != ""
}

// Content returns the template's flag and text for a channel.
func (t *MessageTemplate) Content(channel Channel) ChannelContent {
	switch channel {
	case ChannelSMS:
		return ChannelContent{Enabled: t.SendSMS.Enabled(), Body: deref(t.SMSContent)}
	case ChannelWhatsApp:
		return ChannelContent{Enabled: t.SendWhatsApp.Enabled(), Body: deref(t.WhatsAppContent)}
	case ChannelEmail:
		return ChannelContent{
			Enabled: t.SendEmail.Enabled(),
			Body:    deref(t.MailContent),
			Subject: deref(t.MailSubject),
		}
	case ChannelNotification:
		return ChannelContent{
			Enabled: t.SendNotification.Enabled(),
			Body:    deref(t.NotificationContent),
			Title:   deref(t.NotificationTitle),
		}
	}
	return ChannelContent{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
