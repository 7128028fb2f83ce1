package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
)

// ResolveFilter validates the raw query and builds the filter set.
// startDate and endDate are mandatory; id lists drop non-numeric tokens and an
// empty list means no restriction.
func ResolveFilter(q Query, loc *time.Location) (Filter, error) {
	window, err := resolveWindow(q.StartDate, q.EndDate, loc)
	if err != nil {
		return Filter{}, err
	}

	granularity := GranularityDaily
	switch Granularity(strings.ToLower(strings.TrimSpace(q.Granularity))) {
	case "", GranularityDaily:
	case GranularityWeekly:
		granularity = GranularityWeekly
	default:
		return Filter{}, apperror.Validation("granularity must be one of daily, weekly")
	}

	class, err := resolveClass(q.FrequencyClass)
	if err != nil {
		return Filter{}, err
	}

	return Filter{
		Window:       window,
		Granularity:  granularity,
		Appeals:      predicate.NewIDSet(convertUintSlice(splitList(q.AppealIDs))...),
		Funds:        predicate.NewIDSet(convertUintSlice(splitList(q.FundIDs))...),
		Countries:    predicate.NewStringSet(splitList(q.Countries)...),
		PaymentTypes: predicate.NewStringSet(splitList(q.PaymentTypes)...),
		Class:        class,
	}, nil
}

func resolveWindow(startStr, endStr string, loc *time.Location) (predicate.DateRange, error) {
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)
	if startStr == "" || endStr == "" {
		return predicate.DateRange{}, apperror.Validation("startDate and endDate are required")
	}
	start, err := time.ParseInLocation(DateLayout, startStr, loc)
	if err != nil {
		return predicate.DateRange{}, apperror.Validation("startDate must be a date in YYYY-MM-DD format")
	}
	end, err := time.ParseInLocation(DateLayout, endStr, loc)
	if err != nil {
		return predicate.DateRange{}, apperror.Validation("endDate must be a date in YYYY-MM-DD format")
	}
	if start.After(end) {
		return predicate.DateRange{}, apperror.Validation("startDate must not be after endDate")
	}
	return predicate.NewDateRange(start, end, loc), nil
}

func resolveClass(raw string) (FrequencyClass, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return ClassAny, nil
	}
	for _, c := range FrequencyClasses {
		if string(c) == raw {
			return c, nil
		}
	}
	return ClassAny, apperror.Validation("frequencyClass must be one of one-time, recurring, recurring-first, recurring-next")
}

// ResolveMetric accepts raw only when it names one of allowed.
func ResolveMetric(raw string, allowed []Metric) (Metric, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, m := range allowed {
		if string(m) == raw {
			return m, nil
		}
	}
	names := make([]string, len(allowed))
	for i, m := range allowed {
		names[i] = string(m)
	}
	if raw == "" {
		return "", apperror.Validation("metric is required, one of %s", strings.Join(names, ", "))
	}
	return "", apperror.Validation("unsupported metric %q, expected one of %s", raw, strings.Join(names, ", "))
}

func ResolveDimension(raw string) (Dimension, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, d := range Dimensions {
		if string(d) == raw {
			return d, nil
		}
	}
	return "", apperror.Validation("dimension must be one of country, appeal, fund, payment_method, frequency")
}

func ResolveSegment(raw string) (Segment, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, s := range Segments {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", apperror.Validation("segment must be one of lybunt, sybunt, value_tiers")
}

// ResolveFormat returns "" for JSON responses, or a supported export format.
func ResolveFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "", "json":
		return "", nil
	case FormatCSV, FormatExcel, FormatPDF:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	default:
		return "", apperror.Validation("format must be one of csv, excel, pdf")
	}
}

// ResolveLimit parses an optional positive limit, capped at max.
func ResolveLimit(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperror.Validation("limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}

// ResolveYear parses an optional evaluation year, defaulting to now's year in loc.
func ResolveYear(raw string, now time.Time, loc *time.Location) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.In(loc).Year(), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1900 || y > 9999 {
		return 0, apperror.Validation("year must be a four digit year")
	}
	return y, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func convertUintSlice(strs []string) []uint {
	out := make([]uint, 0, len(strs))
	for _, s := range strs {
		id, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			out = append(out, uint(id))
		}
	}
	return out
}
