package striperepo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadSignature = errors.New("stripe: webhook signature mismatch")
	ErrStaleEvent   = errors.New("stripe: webhook timestamp outside tolerance")
)

const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a Stripe-Signature header
// ("t=<unix>,v1=<hex hmac>") against the raw request body. The signed
// payload is "<t>.<body>", keyed with the endpoint's webhook secret.
func (r *httpRepo) VerifyWebhookSignature(sigHeader string, rawBody []byte) error {
	return verifySignatureAt(sigHeader, rawBody, r.webhookSecret, time.Now())
}

func verifySignatureAt(sigHeader string, rawBody []byte, secret string, now time.Time) error {
	if secret == "" {
		return errors.New("stripe: webhook secret not configured")
	}

	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			if b, err := hex.DecodeString(v); err == nil {
				sigs = append(sigs, b)
			}
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrBadSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	at := time.Unix(unix, 0)
	if at.Before(now.Add(-signatureTolerance)) || at.After(now.Add(signatureTolerance)) {
		return ErrStaleEvent
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	want := mac.Sum(nil)

	for _, got := range sigs {
		if hmac.Equal(got, want) {
			return nil
		}
	}
	return ErrBadSignature
}
