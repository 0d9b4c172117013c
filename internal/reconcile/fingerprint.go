package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"headsign.transitboard.org/internal/models"
)

const (
	fieldSep = "\x1f"
	tupleSep = "\x1e"
)

// Fingerprint computes an order-invariant digest over the raw prediction
// fields used for change detection. Two snapshots fingerprint equal exactly
// when their (route, stop, departure, arrival, direction) tuples are equal as
// multisets. SHA-256 over a canonical serialization keeps the value stable
// across process restarts.
func Fingerprint(predictions []models.Prediction) string {
	tuples := make([]string, 0, len(predictions))
	for _, p := range predictions {
		tuples = append(tuples, strings.Join([]string{
			p.RouteID,
			p.StopID,
			deref(p.DepartureTime),
			deref(p.ArrivalTime),
			strconv.Itoa(int(p.Direction)),
		}, fieldSep))
	}
	sort.Strings(tuples)

	sum := sha256.Sum256([]byte(strings.Join(tuples, tupleSep)))
	return hex.EncodeToString(sum[:])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
