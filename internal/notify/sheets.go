package notify

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

const (
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	sheetsAPIBase   = "https://sheets.googleapis.com/v4"
	sheetsScope     = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionExpiry = time.Hour
)

// SheetsSink appends one row per order to a Google Sheet, authenticating as
// a service account. Auxiliary: the caller logs and swallows its failures.
type SheetsSink struct {
	client        *http.Client
	clientEmail   string
	key           *rsa.PrivateKey
	spreadsheetID string
	writeRange    string

	// Endpoints are fields so tests can point the sink at a local server.
	TokenURL string
	BaseURL  string
}

// NewSheetsSink builds a sink from service-account credentials. The private
// key arrives PEM-encoded, usually with literal \n sequences from the env.
func NewSheetsSink(client *http.Client, clientEmail, privateKeyPEM, spreadsheetID, writeRange string) (*SheetsSink, error) {
	pemData := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return &SheetsSink{
		client:        client,
		clientEmail:   clientEmail,
		key:           key,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		TokenURL:      googleTokenURL,
		BaseURL:       sheetsAPIBase,
	}, nil
}

func (s *SheetsSink) Name() string { return "sheets" }

// Send appends the order row.
func (s *SheetsSink) Send(ctx context.Context, rec *order.Record, _ string) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("obtain access token: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"values": [][]interface{}{sheetRow(rec)},
	})
	if err != nil {
		return fmt.Errorf("marshal append request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		s.BaseURL, s.spreadsheetID, url.PathEscape(s.writeRange))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheets append returned status %d", resp.StatusCode)
	}
	return nil
}

// sheetRow flattens the record into the Orders!A:H column layout.
func sheetRow(rec *order.Record) []interface{} {
	rows := make([]string, len(rec.Items))
	for i, item := range rec.Items {
		rows[i] = fmt.Sprintf("%s (%s) x%d - %s đ",
			item.Name, item.Category, item.Quantity, order.FormatPrice(item.Subtotal()))
	}

	return []interface{}{
		rec.Timestamp.Format(time.RFC3339),
		rec.CustomerName,
		rec.Phone,
		rec.Address,
		rec.Note,
		rec.PaymentMethod,
		strings.Join(rows, "\n"),
		order.FormatPrice(rec.Total),
	}
}

type serviceAccountClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// accessToken exchanges a signed service-account assertion for a short-lived
// OAuth access token.
func (s *SheetsSink) accessToken(ctx context.Context) (string, error) {
	now := time.Now()
	claims := serviceAccountClaims{
		Scope: sheetsScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.clientEmail,
			Audience:  jwt.ClaimStrings{s.TokenURL},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionExpiry)),
		},
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}
	return tokenResp.AccessToken, nil
}
