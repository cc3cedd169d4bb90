package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	q.Info("one")
	q.Success("two")
	q.Error("three")

	peeked := q.Peek()
	require.Len(t, peeked, 2)

	toasts := q.Drain()
	require.Len(t, toasts, 2)
	assert.Equal(t, "two", toasts[0].Message)
	assert.Equal(t, KindSuccess, toasts[0].Kind)
	assert.Equal(t, KindError, toasts[1].Kind)
	assert.NotEmpty(t, toasts[0].ID)

	assert.Empty(t, q.Drain())
}

func TestHub(t *testing.T) {
	h := NewHub()
	a := h.For("s1")
	assert.Same(t, a, h.For("s1"))
	assert.NotSame(t, a, h.For("s2"))
	assert.Equal(t, 2, h.Len())

	h.Drop("s1")
	assert.Equal(t, 1, h.Len())
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Success("Booking confirmed")
	p.Error("Payment failed")

	assert.Equal(t, "✔ Booking confirmed\n✖ Payment failed\n", buf.String())
}

func TestLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	q := NewQueue(5)

	n := Logged{Next: q, Logger: logger}
	n.Error("boom")

	require.Len(t, q.Peek(), 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "boom", hook.LastEntry().Message)
	assert.Equal(t, KindError, hook.LastEntry().Data["kind"])
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramAlerter(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("Sends to ops chat", func(t *testing.T) {
		sender := &fakeSender{}
		a := newTelegramAlerter(sender, -1001, logger)

		require.NoError(t, a.Alert(context.Background(), "Rent proof submitted"))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, int64(-1001), sender.sent[0].ChatID)
		assert.Equal(t, "Rent proof submitted", sender.sent[0].Text)
	})

	t.Run("Send failure is wrapped", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("429 too many requests")}
		a := newTelegramAlerter(sender, 1, logger)

		err := a.Alert(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		sender := &fakeSender{}
		a := newTelegramAlerter(sender, 1, logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, a.Alert(ctx, "x"), context.Canceled)
		assert.Empty(t, sender.sent)
	})
}
