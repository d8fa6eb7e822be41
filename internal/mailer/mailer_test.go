package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type fakeSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSendConfirmation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := New(sender, "", nil)
	m.now = func() time.Time { return time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC) }

	id, err := m.SendConfirmation(context.Background(), "  mom@example.com ")
	if err != nil {
		t.Fatalf("SendConfirmation returned error: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("unexpected message id %q", id)
	}

	in := sender.inputs[0]
	if in.Destination.ToAddresses[0] != "mom@example.com" {
		t.Fatalf("unexpected recipient %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Source) != defaultFrom {
		t.Fatalf("unexpected sender %q", aws.ToString(in.Source))
	}
	if aws.ToString(in.Message.Subject.Data) != ConfirmationSubject {
		t.Fatalf("unexpected subject")
	}
	if html := aws.ToString(in.Message.Body.Html.Data); !strings.Contains(html, "© 2031 Momster") {
		t.Fatalf("expected year in body")
	}
}

func TestSendConfirmationRejectsInvalidAddress(t *testing.T) {
	t.Parallel()

	for _, address := range []string{"", "   ", "not-an-email", "mom@"} {
		sender := &fakeSender{}
		_, err := New(sender, "", nil).SendConfirmation(context.Background(), address)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress for %q, got %v", address, err)
		}
		if len(sender.inputs) != 0 {
			t.Fatalf("SES must not be called for %q", address)
		}
	}
}

func TestSendConfirmationSenderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	_, err := New(&fakeSender{err: boom}, "Momster <hi@momster.gr>", nil).SendConfirmation(context.Background(), "mom@example.com")
	if !errors.Is(err, boom) {
		t.Fatalf("expected sender error to be wrapped, got %v", err)
	}
}

func TestRenderConfirmation(t *testing.T) {
	t.Parallel()

	html, err := RenderConfirmation(2026)
	if err != nil {
		t.Fatalf("RenderConfirmation returned error: %v", err)
	}
	if !strings.Contains(html, "Γεια σου, αγαπημένη μαμά!") || !strings.Contains(html, "© 2026") {
		t.Fatalf("unexpected html: %s", html)
	}
}
