package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	yagptclient "pto-bot-backend/lib/extractor/yagpt-client"
	"pto-bot-backend/lib/utils/helpers"
	"pto-bot-backend/models"

	log "github.com/sirupsen/logrus"
)

// Provider turns free text plus a reference date into a concrete leave
// span. Anything the model returns that is not a strict ISO date range
// surfaces as a ParseError, never as a silently guessed range.
type Provider interface {
	Extract(freeText string, today time.Time) (Result, error)
}

type Result struct {
	Start  time.Time
	End    time.Time
	Reason string
}

var Instance Provider

func NewHandler(token, catalogID string) {
	Instance = impl{
		client: yagptclient.NewClient(token, catalogID),
	}
}

func NewProviderWithClient(client yagptclient.Provider) Provider {
	return impl{
		client: client,
	}
}

type impl struct {
	client yagptclient.Provider
}

const systemPromt = `You extract paid-time-off dates from an employee message.
Today is %s (%s).
Reply with a single JSON object and nothing else:
{"start":"YYYY-MM-DD","end":"YYYY-MM-DD","reason":"short reason"}
Dates must be resolved relative to today. For a single day set start and end
to the same date. If no reason is given use "PTO".`

func (i impl) Extract(freeText string, today time.Time) (Result, error) {
	promt := fmt.Sprintf(systemPromt, helpers.FormatISODate(today), today.UTC().Weekday())
	raw, err := i.client.GenerateByPromtAndText(promt, freeText)
	if err != nil {
		log.WithError(err).Error("date extraction request failed")
		return Result{}, err
	}
	return parseExtraction(raw)
}

type extraction struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// parseExtraction validates the raw model output. Models like to wrap
// JSON in markdown fences, so those are stripped first.
func parseExtraction(raw string) (Result, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var ext extraction
	if err := json.Unmarshal([]byte(cleaned), &ext); err != nil {
		return Result{}, &models.ParseError{Reason: "the dates could not be recognized, please rephrase"}
	}
	if ext.Start == "" || ext.End == "" {
		return Result{}, &models.ParseError{Reason: "no dates were found in the message"}
	}
	start, err := helpers.ParseISODate(ext.Start)
	if err != nil {
		return Result{}, &models.ParseError{Reason: fmt.Sprintf("start date %q is not a valid date", ext.Start)}
	}
	end, err := helpers.ParseISODate(ext.End)
	if err != nil {
		return Result{}, &models.ParseError{Reason: fmt.Sprintf("end date %q is not a valid date", ext.End)}
	}
	reason := strings.TrimSpace(ext.Reason)
	if reason == "" {
		reason = "PTO"
	}
	return Result{Start: start, End: end, Reason: reason}, nil
}
