package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"clausecheck-backend/models"
)

// SlackNotifier posts compliance findings to a Slack incoming webhook.
// Notifications are best-effort: a failed post is the caller's to log,
// never to abort an evaluation over.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewSlackNotifierFromEnv creates a notifier from SLACK_WEBHOOK_URL, or
// returns nil when the variable is unset.
func NewSlackNotifierFromEnv() *SlackNotifier {
	url := os.Getenv("SLACK_WEBHOOK_URL")
	if url == "" {
		return nil
	}
	return NewSlackNotifier(url)
}

// NotifyReport sends a summary of a compliance report: the score, missing
// mandatory requirements, and high-risk items.
func (n *SlackNotifier) NotifyReport(ctx context.Context, report *models.ComplianceReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Compliance report for document %s\n", report.DocumentID)
	fmt.Fprintf(&b, "Overall score: %.2f / 100\n", report.OverallScore)

	if len(report.MissingRequirements) > 0 {
		fmt.Fprintf(&b, "\nMissing mandatory requirements (%d):\n", len(report.MissingRequirements))
		for _, req := range report.MissingRequirements {
			fmt.Fprintf(&b, "• [%s] %s (%s)\n", req.Framework, req.RequirementID, req.ArticleReference)
		}
	}

	if len(report.HighRiskItems) > 0 {
		fmt.Fprintf(&b, "\nHigh-risk clauses (%d):\n", len(report.HighRiskItems))
		for _, item := range report.HighRiskItems {
			fmt.Fprintf(&b, "• %s: %s (confidence %.2f)\n", item.ClauseID, item.ComplianceStatus, item.Confidence)
		}
	}

	payload, err := json.Marshal(map[string]string{"text": b.String()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %s", resp.Status)
	}
	return nil
}
