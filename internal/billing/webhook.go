package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature возвращается при отсутствующем секрете, некорректном
// заголовке подписи или несовпадении HMAC.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Допустимое расхождение метки времени подписи, защита от replay.
const signatureTolerance = 5 * time.Minute

// ConstructEvent проверяет подпись сырого тела webhook и разбирает событие.
//
// Подпись передается в заголовке вида "t=<unix>,v1=<hex>", где v1 —
// HMAC-SHA256 от строки "<t>.<body>" на webhook-секрете. Проверка подписи
// выполняется строго до разбора содержимого события.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	const op = "billing.ConstructEvent"

	if secret == "" {
		return nil, fmt.Errorf("%s: secret is not configured: %w", op, ErrInvalidSignature)
	}
	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if d := time.Since(time.Unix(timestamp, 0)); d > signatureTolerance || d < -signatureTolerance {
		return nil, fmt.Errorf("%s: timestamp outside tolerance: %w", op, ErrInvalidSignature)
	}

	expected := computeSignature(timestamp, payload, secret)
	// Сравнение без уязвимости по времени
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%s: unmarshal event: %w", op, err)
	}
	return mapWireEvent(wire), nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestampStr, signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestampStr = value
		case "v1":
			signature = value
		}
	}
	if timestampStr == "" || signature == "" {
		return 0, "", ErrInvalidSignature
	}
	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidSignature
	}
	return timestamp, signature, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func mapWireEvent(wire wireEvent) Event {
	switch wire.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		ev := SubscriptionUpserted{
			CustomerID:     wire.Data.Object.Customer,
			SubscriptionID: wire.Data.Object.ID,
			Status:         wire.Data.Object.Status,
		}
		if len(wire.Data.Object.Items.Data) > 0 {
			ev.PriceID = wire.Data.Object.Items.Data[0].Price.ID
		}
		return ev
	case "customer.subscription.deleted":
		return SubscriptionDeleted{CustomerID: wire.Data.Object.Customer}
	default:
		return Other{Type: wire.Type}
	}
}
