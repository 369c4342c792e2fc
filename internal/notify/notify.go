// Package notify sends the welcome email through SES and publishes the news
// digest to an SNS topic.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclient "telugu-assistant/internal/common/aws"
	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/validation"
	"telugu-assistant/internal/models"
)

var (
	ErrEmailDisabled  = errors.New("EMAIL_DISABLED")
	ErrDigestDisabled = errors.New("DIGEST_DISABLED")
	ErrInvalidEmail   = errors.New("INVALID_EMAIL")
	ErrEmptyDigest    = errors.New("EMPTY_DIGEST")
	ErrSendFailed     = errors.New("NOTIFICATION_SEND_FAILED")
)

const (
	welcomeSubject = "తెలుగు AI అసిస్టెంట్‌కు స్వాగతం"
	welcomeBody    = "నమస్కారం! మీ ఖాతా విజయవంతంగా సృష్టించబడింది. తెలుగు లేదా English లో చాట్ చేయండి, తాజా తెలుగు వార్తలు చదవండి."
	digestSubject  = "తాజా తెలుగు వార్తలు"
	charset        = "UTF-8"
)

type Config struct {
	FromEmail     string
	EmailEnabled  bool
	TopicARN      string
	DigestEnabled bool
}

func NewConfig(cfg *config.Config) *Config {
	n := cfg.Notifications
	return &Config{
		FromEmail:     n.Email.FromEmail,
		EmailEnabled:  n.Email.Enabled,
		TopicARN:      n.Digest.TopicARN,
		DigestEnabled: n.Digest.Enabled,
	}
}

type Notifier struct {
	config *Config
	ses    awsclient.SESAPI
	sns    awsclient.SNSAPI
	logger logger.Logger
}

// NewNotifier accepts nil clients for channels that are turned off.
func NewNotifier(cfg *Config, sesClient awsclient.SESAPI, snsClient awsclient.SNSAPI, log logger.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.With(map[string]interface{}{"component": "notify"}),
	}
}

// NewFromConfig builds the AWS clients for the enabled channels only.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Notifier, error) {
	nc := NewConfig(cfg)
	region := cfg.Notifications.AWS.Region

	var (
		sesClient awsclient.SESAPI
		snsClient awsclient.SNSAPI
	)
	if nc.EmailEnabled {
		c, err := awsclient.NewSESClient(ctx, region)
		if err != nil {
			return nil, err
		}
		sesClient = c
	}
	if nc.DigestEnabled {
		c, err := awsclient.NewSNSClient(ctx, region)
		if err != nil {
			return nil, err
		}
		snsClient = c
	}
	return NewNotifier(nc, sesClient, snsClient, log), nil
}

// SendWelcome emails a new user and returns the SES message id.
func (n *Notifier) SendWelcome(ctx context.Context, email string) (string, error) {
	if !n.config.EmailEnabled || n.ses == nil {
		return "", ErrEmailDisabled
	}
	if !validation.ValidateEmail(email) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	return n.SendEmail(ctx, models.EmailMessage{
		To:      []string{email},
		From:    n.config.FromEmail,
		Subject: welcomeSubject,
		Body:    welcomeBody,
	})
}

// SendEmail sends msg through SES.
func (n *Notifier) SendEmail(ctx context.Context, msg models.EmailMessage) (string, error) {
	if n.ses == nil {
		return "", ErrEmailDisabled
	}

	body := &sestypes.Body{
		Text: &sestypes.Content{Data: aws.String(msg.Body), Charset: aws.String(charset)},
	}
	if msg.HTMLBody != "" {
		body.Html = &sestypes.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String(charset)}
	}

	from := msg.From
	if from == "" {
		from = n.config.FromEmail
	}

	out, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &sestypes.Destination{ToAddresses: msg.To},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
			Body:    body,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: ses: %v", ErrSendFailed, err)
	}

	id := aws.ToString(out.MessageId)
	n.logger.Info("email sent", map[string]interface{}{
		"to":        msg.To,
		"messageId": id,
	})
	return id, nil
}

// PublishDigest posts the headlines to the digest topic.
func (n *Notifier) PublishDigest(ctx context.Context, headlines []models.Headline) (string, error) {
	if !n.config.DigestEnabled || n.sns == nil {
		return "", ErrDigestDisabled
	}
	if len(headlines) == 0 {
		return "", ErrEmptyDigest
	}

	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(digestSubject),
		Message:  aws.String(FormatDigest(headlines)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: sns: %v", ErrSendFailed, err)
	}

	id := aws.ToString(out.MessageId)
	n.logger.Info("news digest published", map[string]interface{}{
		"headlines": len(headlines),
		"messageId": id,
	})
	return id, nil
}

// FormatDigest renders one numbered line per headline followed by its link.
func FormatDigest(headlines []models.Headline) string {
	var b strings.Builder
	b.WriteString(digestSubject)
	b.WriteString("\n\n")
	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s", i+1, h.Title)
		if h.Source != "" {
			fmt.Fprintf(&b, " (%s)", h.Source)
		}
		b.WriteString("\n")
		if h.Link != "" && h.Link != "#" {
			b.WriteString("   ")
			b.WriteString(h.Link)
			b.WriteString("\n")
		}
	}
	return b.String()
}
