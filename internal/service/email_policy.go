package service

import (
	"fmt"
	"strconv"
	"strings"
)

// EmailPolicy decides whether a template may be delivered by email. Templates
// in the excluded set never produce email jobs, whatever their send_email flag.
type EmailPolicy struct {
	excluded []idRange
}

type idRange struct {
	from, to int64
}

// ParseEmailPolicy reads a list such as "2-6,10". An empty list excludes nothing.
func ParseEmailPolicy(value string) (EmailPolicy, error) {
	var policy EmailPolicy

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		lo, err := strconv.ParseInt(strings.TrimSpace(from), 10, 64)
		if err != nil {
			return EmailPolicy{}, fmt.Errorf("invalid template id %q: %w", part, err)
		}

		hi := lo
		if isRange {
			hi, err = strconv.ParseInt(strings.TrimSpace(to), 10, 64)
			if err != nil {
				return EmailPolicy{}, fmt.Errorf("invalid template range %q: %w", part, err)
			}
		}

		if hi < lo {
			return EmailPolicy{}, fmt.Errorf("invalid template range %q: end before start", part)
		}

		policy.excluded = append(policy.excluded, idRange{from: lo, to: hi})
	}

	return policy, nil
}

func (p EmailPolicy) Allows(templateID int64) bool {
	for _, r := range p.excluded {
		if templateID >= r.from && templateID <= r.to {
			return false
		}
	}
	return true
}
