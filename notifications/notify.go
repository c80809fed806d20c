// Package notifications delivers push and email messages triggered by
// lifecycle transitions. Delivery is fire-and-forget: a user with no
// registered device and a down SMTP server both degrade to a log line,
// never to a failed request.
package notifications

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"snowclear-api/models"
	"snowclear-api/redis"
)

// PushSender delivers a push message to a single device token
type PushSender interface {
	SendPush(token, title, body string) error
}

// logPushSender stands in for the real push provider in development
type logPushSender struct{}

func (logPushSender) SendPush(token, title, body string) error {
	log.Printf("push to %s: %s: %s", token, title, body)
	return nil
}

// Push is the provider used by Notify. Swapped out in production wiring.
var Push PushSender = logPushSender{}

func tokenKey(userID uint) string {
	return fmt.Sprintf("push:token:%d", userID)
}

// RegisterDeviceToken stores a user's push token
func RegisterDeviceToken(userID uint, token string) error {
	if redis.Client == nil {
		return nil
	}
	return redis.Client.Set(redis.Ctx, tokenKey(userID), token, 0).Err()
}

// UnregisterDeviceToken removes a user's push token
func UnregisterDeviceToken(userID uint) error {
	if redis.Client == nil {
		return nil
	}
	return redis.Client.Del(redis.Ctx, tokenKey(userID)).Err()
}

func deviceToken(userID uint) (string, bool) {
	if redis.Client == nil {
		return "", false
	}
	token, err := redis.Client.Get(redis.Ctx, tokenKey(userID)).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// Notify sends a push (if the user has a registered device) and an email
// to the user. Failures are logged and swallowed.
func Notify(user *models.User, subject, body string) {
	if user == nil {
		return
	}
	if token, ok := deviceToken(user.ID); ok {
		if err := Push.SendPush(token, subject, body); err != nil {
			log.Printf("Failed to push to user %d: %v", user.ID, err)
		}
	}
	if user.Email != "" {
		if err := SendEmail(user.Email, subject, body); err != nil {
			log.Printf("Failed to email user %d: %v", user.ID, err)
		}
	}
}

// SendEmail sends an HTML email through the configured SMTP server
func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("SMTP not configured, skipping email to %s (%s)", to, subject)
		return nil
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, os.Getenv("EMAIL_USER"), os.Getenv("EMAIL_PASS"))
	return d.DialAndSend(m)
}
