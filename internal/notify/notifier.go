// Package notify sends best-effort submission notifications: an SES email
// to the admin inbox and an SNS publish for downstream consumers. A
// notification failure never affects the submission itself.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"founder-intake/internal/common/logger"
	"founder-intake/internal/common/metrics"
	"founder-intake/internal/models"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is the slice of the SNS client the notifier needs.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	email      EmailSender
	topic      TopicPublisher
	sender     string
	adminEmail string
	topicARN   string
	log        logger.Logger
}

func NewNotifier(email EmailSender, topic TopicPublisher, sender, adminEmail, topicARN string, log logger.Logger) *Notifier {
	return &Notifier{
		email:      email,
		topic:      topic,
		sender:     sender,
		adminEmail: adminEmail,
		topicARN:   topicARN,
		log:        log,
	}
}

// SubmissionReceived fans out both channels. Each failure is logged and
// counted; neither blocks the other.
func (n *Notifier) SubmissionReceived(ctx context.Context, documentID string, draft models.FormDraft) {
	if err := n.sendEmail(ctx, documentID, draft); err != nil {
		metrics.NotificationsTotal.WithLabelValues("email", "failure").Inc()
		n.log.Error("submission email failed", map[string]interface{}{
			"documentId": documentID,
			"error":      err.Error(),
		})
	} else if n.email != nil {
		metrics.NotificationsTotal.WithLabelValues("email", "success").Inc()
	}

	if err := n.publishTopic(ctx, documentID, draft); err != nil {
		metrics.NotificationsTotal.WithLabelValues("sns", "failure").Inc()
		n.log.Error("submission topic publish failed", map[string]interface{}{
			"documentId": documentID,
			"error":      err.Error(),
		})
	} else if n.topic != nil {
		metrics.NotificationsTotal.WithLabelValues("sns", "success").Inc()
	}
}

func (n *Notifier) sendEmail(ctx context.Context, documentID string, draft models.FormDraft) error {
	if n.email == nil || n.adminEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New founder intake submission: %s", draft.CompanyName)
	body := fmt.Sprintf(
		"A founder completed the intake wizard.\n\n"+
			"Company: %s\nOperating name: %s\nStage: %s\nLocation: %s, %s\n"+
			"Raising: %s (%s)\nSubmitted at: %s\nDocument id: %s\n",
		draft.CompanyName, draft.OperatingName, draft.Stage, draft.City, draft.Country,
		draft.Raising, draft.AmountRaising, draft.SubmittedAt, documentID)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.adminEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (n *Notifier) publishTopic(ctx context.Context, documentID string, draft models.FormDraft) error {
	if n.topic == nil || n.topicARN == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"event":       "submission.received",
		"documentId":  documentID,
		"companyName": draft.CompanyName,
		"stage":       draft.Stage,
		"submittedAt": draft.SubmittedAt,
	})
	if err != nil {
		return err
	}

	_, err = n.topic.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("submission.received"),
		Message:  aws.String(string(payload)),
	})
	return err
}
