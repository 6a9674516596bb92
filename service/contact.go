package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/validate"
)

const maxContactMessage = 5000

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactSender delivers a stored contact message. *Mailer implements it.
type ContactSender interface {
	SendContact(ctx context.Context, msg *models.ContactMessage) error
}

type Contact struct {
	store  ContactStore
	sender ContactSender
	now    func() time.Time
}

// NewContact stores contact messages and, when sender is not nil, mails them.
func NewContact(store ContactStore, sender ContactSender) *Contact {
	return &Contact{store: store, sender: sender, now: time.Now}
}

// Submit saves the message first so nothing is lost when mail delivery fails.
func (c *Contact) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:      strings.TrimSpace(in.Name),
		Email:     NormalizeEmail(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: c.now(),
	}
	v := &validate.Validator{}
	v.Required("name", msg.Name).
		Required("email", msg.Email).
		Required("message", msg.Message).
		Email("email", msg.Email).
		MaxLen("message", msg.Message, maxContactMessage)
	if err := v.Err("Invalid contact message"); err != nil {
		return nil, err
	}

	id, err := c.store.InsertContactMessage(ctx, msg)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("save contact message: %w", err))
	}
	msg.ID = id

	if c.sender == nil {
		return msg, nil
	}
	log := ctxutil.Logger(ctx)
	if err := c.sender.SendContact(ctx, msg); err != nil {
		log.Error("contact mail failed", slog.String("message_id", id.Hex()), slog.Any("error", err))
		return msg, nil
	}
	msg.Mailed = true
	if err := c.store.MarkContactMessageMailed(ctx, id); err != nil {
		log.Warn("mark contact message mailed", slog.String("message_id", id.Hex()), slog.Any("error", err))
	}
	return msg, nil
}
