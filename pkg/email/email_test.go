package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail(t *testing.T) {
	var gotAddr string
	var gotMsg []byte
	s := NewSender(Config{Host: "smtp.example.com", Port: "2525", Sender: "hello@example.com"})
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		assert.Equal(t, "hello@example.com", from)
		assert.Equal(t, []string{"ann@example.com"}, to)
		return nil
	}

	require.NoError(t, s.SendEmail("ann@example.com", "Welcome", "Cheers"))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Welcome\r\n")

	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.Error(t, s.SendEmail("ann@example.com", "Welcome", "Cheers"))
}

func TestDisabledSender(t *testing.T) {
	s := NewSender(Config{})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("disabled sender must not dial")
		return nil
	}
	assert.False(t, s.Enabled())
	assert.NoError(t, s.SendEmail("ann@example.com", "Welcome", "Cheers"))
}
