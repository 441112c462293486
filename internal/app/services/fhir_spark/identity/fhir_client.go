package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/fhir_dto"
	"mobileforms-service/internal/pkg/utils"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// fhirClient is the shared transport of the identity and registry services.
type fhirClient struct {
	BaseUrl         string
	PatientSystem   string
	HouseholdSystem string
	HTTPClient      *http.Client
	Log             *zap.Logger
}

func newFhirClient(fhirCfg config.FHIR, logger *zap.Logger) *fhirClient {
	return &fhirClient{
		BaseUrl:         strings.TrimRight(fhirCfg.BaseUrl, "/"),
		PatientSystem:   fhirCfg.PatientIdentifierSystem,
		HouseholdSystem: fhirCfg.HouseholdIdentifierSystem,
		HTTPClient:      &http.Client{Timeout: time.Duration(fhirCfg.RequestTimeoutInSeconds) * time.Second},
		Log:             logger,
	}
}

func (c *fhirClient) resourceURL(resource string, segments ...string) string {
	parts := append([]string{c.BaseUrl, resource}, segments...)
	return strings.Join(parts, "/")
}

func (c *fhirClient) searchURL(resource string, params url.Values) string {
	return c.resourceURL(resource) + "?" + params.Encode()
}

func identifierToken(system, value string) string {
	if system == "" {
		return value
	}
	return system + "|" + value
}

// do sends one FHIR request and decodes the response into out when the status is in
// expected. It returns the status so callers can treat 404 as a missing resource.
func (c *fhirClient) do(ctx context.Context, method, target string, body interface{}, out interface{}, expected ...int) (int, error) {
	requestID := utils.RequestIDFrom(ctx)

	var payload io.Reader
	if body != nil {
		requestJSON, err := json.Marshal(body)
		if err != nil {
			return 0, exceptions.ErrCannotMarshalJSON(err)
		}
		payload = bytes.NewReader(requestJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		c.Log.Error("fhirClient.do error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, target),
			zap.Error(err),
		)
		return 0, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("fhirClient.do error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, target),
			zap.Error(err),
		)
		return 0, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, exceptions.ErrDecodeResponse(err, target)
	}

	if !statusIn(resp.StatusCode, expected) {
		fhirErr := outcomeError(bodyBytes, resp.StatusCode)
		c.Log.Error("fhirClient.do FHIR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, target),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.Error(fhirErr),
		)
		return resp.StatusCode, exceptions.ErrFhirStatus(fhirErr, resp.StatusCode, target)
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			c.Log.Error("fhirClient.do error decoding response",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingURLKey, target),
				zap.Error(err),
			)
			return resp.StatusCode, exceptions.ErrDecodeResponse(err, target)
		}
	}
	return resp.StatusCode, nil
}

func statusIn(status int, expected []int) bool {
	for _, code := range expected {
		if status == code {
			return true
		}
	}
	return false
}

// outcomeError turns an OperationOutcome body into an error carrying its first diagnostic.
func outcomeError(body []byte, status int) error {
	var outcome fhir_dto.OperationOutcome
	if err := json.Unmarshal(body, &outcome); err == nil && len(outcome.Issue) > 0 && outcome.Issue[0].Diagnostics != "" {
		return errors.New(outcome.Issue[0].Diagnostics)
	}
	return fmt.Errorf("unexpected status %d", status)
}

// search runs a searchset query and decodes every entry into a new T.
func search[T any](ctx context.Context, c *fhirClient, resource string, params url.Values) ([]T, error) {
	bundle := new(fhir_dto.Bundle)
	if _, err := c.do(ctx, constvars.MethodGet, c.searchURL(resource, params), nil, bundle, constvars.StatusOK); err != nil {
		return nil, err
	}

	results := make([]T, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		var resourceValue T
		if err := json.Unmarshal(entry.Resource, &resourceValue); err != nil {
			return nil, exceptions.ErrDecodeResponse(err, resource)
		}
		results = append(results, resourceValue)
	}
	return results, nil
}
