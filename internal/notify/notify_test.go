package notify

import (
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_SendNeverErrors(t *testing.T) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	n := &LogNotifier{Log: log}
	require.NoError(t, n.Send("leak detected", "counter c1"))
}

type stubNotifier struct {
	err  error
	sent []string
}

func (s *stubNotifier) Send(subject, body string) error {
	s.sent = append(s.sent, subject)
	return s.err
}

func TestMultiNotifier_FansOutToEveryWrappedNotifier(t *testing.T) {
	a := &stubNotifier{}
	b := &stubNotifier{}
	m := &MultiNotifier{Notifiers: []Notifier{a, b}}

	require.NoError(t, m.Send("daily irrigation report", "body"))
	assert.Equal(t, []string{"daily irrigation report"}, a.sent)
	assert.Equal(t, []string{"daily irrigation report"}, b.sent)
}

// TestMultiNotifier_OneFailureDoesNotSkipTheOthers covers "one broken
// transport never silences the others".
func TestMultiNotifier_OneFailureDoesNotSkipTheOthers(t *testing.T) {
	failing := &stubNotifier{err: errors.New("smtp down")}
	ok := &stubNotifier{}
	m := &MultiNotifier{Notifiers: []Notifier{failing, ok}}

	err := m.Send("zero water for faucet roses", "body")
	require.Error(t, err)
	assert.Equal(t, []string{"zero water for faucet roses"}, ok.sent, "second notifier must still run after the first fails")
}

func TestMultiNotifier_ReturnsFirstErrorOnly(t *testing.T) {
	first := &stubNotifier{err: errors.New("first failure")}
	second := &stubNotifier{err: errors.New("second failure")}
	m := &MultiNotifier{Notifiers: []Notifier{first, second}}

	err := m.Send("subject", "body")
	require.Error(t, err)
	assert.Equal(t, "first failure", err.Error())
}

func TestNewSMTPNotifierFromEnv_MissingRequiredVarReturnsNil(t *testing.T) {
	lookup := func(key string) (string, bool) {
		vals := map[string]string{
			"IRRIGATOR_SMTP_HOST": "smtp.example.com",
			"IRRIGATOR_SMTP_USER": "bot",
		}
		v, ok := vals[key]
		return v, ok
	}
	assert.Nil(t, NewSMTPNotifierFromEnv(lookup))
}

func TestNewSMTPNotifierFromEnv_DefaultsPortAndFrom(t *testing.T) {
	vals := map[string]string{
		"IRRIGATOR_SMTP_HOST":     "smtp.example.com",
		"IRRIGATOR_SMTP_USER":     "bot@example.com",
		"IRRIGATOR_SMTP_PASSWORD": "secret",
		"IRRIGATOR_SMTP_TO":       "admin@example.com",
	}
	lookup := func(key string) (string, bool) {
		v, ok := vals[key]
		return v, ok
	}
	n := NewSMTPNotifierFromEnv(lookup)
	require.NotNil(t, n)
	assert.Equal(t, "587", n.Port)
	assert.Equal(t, "bot@example.com", n.From)
}

func TestSMTPNotifier_SkipsSendWhenUnreachable(t *testing.T) {
	n := &SMTPNotifier{
		Host: "smtp.example.com", Port: "587", User: "bot", Password: "x",
		From: "bot@example.com", To: "admin@example.com",
		Reachable: func() bool { return false },
	}
	err := n.Send("subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
