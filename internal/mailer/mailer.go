// Package mailer sends transactional e-mail through Amazon SES.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	ConfirmationSubject = "🌸 Καλωσήρθες στη λίστα αναμονής του Momster Marketplace!"

	defaultFrom = "Momster <onboarding@momster.gr>"
	charset     = "UTF-8"
)

var ErrInvalidAddress = errors.New("invalid email address")

//go:embed templates/*.html
var templatesFS embed.FS

var confirmationTemplate = template.Must(template.ParseFS(templatesFS, "templates/marketplace_confirmation.html"))

// Sender is the subset of the SES client used here.
type Sender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	Region string
	From   string
}

type Mailer struct {
	sender   Sender
	from     string
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewSES builds a mailer on the default AWS credential chain.
func NewSES(ctx context.Context, cfg Config, logger *zap.Logger) (*Mailer, error) {
	opts := []func(*config.LoadOptions) error{}
	if region := strings.TrimSpace(cfg.Region); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return New(ses.NewFromConfig(awsCfg), cfg.From, logger), nil
}

func New(sender Sender, from string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(from) == "" {
		from = defaultFrom
	}
	return &Mailer{
		sender:   sender,
		from:     from,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SendConfirmation mails the marketplace waitlist confirmation to address and
// returns the SES message id.
func (m *Mailer) SendConfirmation(ctx context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	if err := m.validate.Var(address, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	body, err := RenderConfirmation(m.now().Year())
	if err != nil {
		return "", err
	}

	out, err := m.sender.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{address}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(ConfirmationSubject), Charset: aws.String(charset)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body), Charset: aws.String(charset)},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return "", fmt.Errorf("send confirmation: %w", err)
	}

	id := aws.ToString(out.MessageId)
	m.logger.Info("marketplace confirmation sent", zap.String("message_id", id))

	return id, nil
}

func RenderConfirmation(year int) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, struct{ Year int }{Year: year}); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}
