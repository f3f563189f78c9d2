package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/drivers/mailer"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/exceptions"
	"net"
	"net/smtp"
	"regexp"
	"strings"

	"github.com/rabbitmq/amqp091-go"
)

type mailerService struct {
	Channel *amqp091.Channel
	Client  *mailer.SMTPClient
	Queue   string
}

func NewMailerService(client *mailer.SMTPClient, rabbitMQConnection *amqp091.Connection, queue string) (contracts.MailerService, error) {
	channel, err := rabbitMQConnection.Channel()
	if err != nil {
		return nil, err
	}

	return &mailerService{
		Channel: channel,
		Client:  client,
		Queue:   queue,
	}, nil
}

func (s *mailerService) PublishEmail(ctx context.Context, request *requests.EmailPayload) error {
	body, err := json.Marshal(request)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	}

	err = s.Channel.PublishWithContext(ctx, "", s.Queue, false, false, message)
	if err != nil {
		return exceptions.ErrRabbitMQPublish(err)
	}

	return nil
}

// SendBasicEmail speaks to the relay over a connection bounded by the context
// deadline, so a hung relay fails the attempt instead of stalling the worker.
func (svc *mailerService) SendBasicEmail(ctx context.Context, to []string, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", svc.Client.Host, svc.Client.Port)
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, svc.Client.Host)
	if err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	defer client.Close()

	if err := client.Auth(svc.Client.Auth); err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	if err := client.Mail(svc.Client.EmailSender); err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	msg := fmt.Sprintf(constvars.EmailSendBasicEmailSubjectFormat, strings.Join(to, ", "), subject, body)
	if _, err := writer.Write([]byte(msg)); err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	if err := writer.Close(); err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}

	if err := client.Quit(); err != nil {
		return exceptions.ErrSMTPSendEmail(err, svc.Client.Host)
	}
	return nil
}

func (svc *mailerService) ValidateEmail(email string) bool {
	re := regexp.MustCompile(constvars.RegexEmail)
	return re.MatchString(email)
}
