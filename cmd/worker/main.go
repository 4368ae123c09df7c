package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/julee/knowledge-service/config"
	"github.com/julee/knowledge-service/internal/application"
	"github.com/julee/knowledge-service/pkg/helpers"
	"github.com/julee/knowledge-service/pkg/mailer"
	mailtpl "github.com/julee/knowledge-service/pkg/mailer/templates"
)

// The worker consumes entity events published by the API and turns the
// user-facing ones into emails. Anything it does not recognise is acked and
// dropped so the queue never backs up on unknown event types.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; event worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := helpers.DeclareQueue(ch, cfg.RabbitMQEventQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			var ev application.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			tplName := ""
			switch ev.Type {
			case application.EventUserCreated:
				tplName = mailtpl.Welcome
			case application.EventUserUpdated:
				tplName = mailtpl.ProfileUpdated
			}
			if tplName == "" {
				// Not an email-worthy event.
				_ = msg.Ack(false)
				continue
			}

			to := fmt.Sprintf("%v", ev.Data["email"])
			if to == "" || to == "<nil>" {
				log.Printf("event %s for %s has no email, dropping", ev.Type, ev.EntityID)
				_ = msg.Ack(false)
				continue
			}

			subject, html, err := mailtpl.Render(tplName, ev.Data)
			if err != nil {
				log.Printf("render %s failed: %v", tplName, err)
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, to, subject, "", html); err != nil {
				cancel()
				log.Printf("send to %s failed: %v", to, err)
				// Requeue once; the broker redelivers.
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
	}()

	log.Printf("event worker consuming %s", cfg.RabbitMQEventQueue)
	<-stop
	log.Println("shutting down event worker")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
	}
}
