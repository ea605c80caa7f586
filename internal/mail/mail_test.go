package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVerificationMessage(t *testing.T) {
	msg, err := buildVerificationMessage("no-reply@sugvoyage.app", "SugVoyage", "traveler@example.com", "482913", 10*time.Minute)
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "From: SugVoyage <no-reply@sugvoyage.app>\r\n")
	assert.Contains(t, text, "To: traveler@example.com\r\n")
	assert.Contains(t, text, "Subject: "+verificationSubject)
	assert.Contains(t, text, "482913")
	assert.Contains(t, text, "expires in 10 minutes")

	headers, _, found := strings.Cut(text, "\r\n\r\n")
	assert.True(t, found)
	assert.Contains(t, headers, "MIME-Version: 1.0")
}

func TestLogMailer_SendVerificationCode(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	err := NewLogMailer(log).SendVerificationCode(context.Background(), "traveler@example.com", "123456")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"code":"123456"`)
	assert.Contains(t, buf.String(), `"to":"traveler@example.com"`)
}
