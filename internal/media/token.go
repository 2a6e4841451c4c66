package media

import (
	"time"

	"github.com/google/uuid"
)

const tokenTimeLayout = "20060102_150405"

// NewToken returns a unique name component: a coarse wall-clock prefix so
// artifacts sort chronologically on disk, plus a UUID so concurrent requests
// never collide.
func NewToken(now time.Time) string {
	return now.Format(tokenTimeLayout) + "_" + uuid.NewString()
}

// NewShortToken is the stitched-output variant: same timestamp prefix with the
// first UUID group only, matching the mansio_stitched_* naming contract.
func NewShortToken(now time.Time) string {
	return now.Format(tokenTimeLayout) + "_" + uuid.NewString()[:8]
}
