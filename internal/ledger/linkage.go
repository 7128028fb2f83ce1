package ledger

import "strconv"

// Linker resolves the donor behind a transaction. Resolution order:
//  1. the donor id reference, when it points at a known donor;
//  2. otherwise the transaction email, compared trimmed and case-insensitively.
//
// When several donors share an email the lowest id wins.
type Linker struct {
	byID    map[uint]*Donor
	byEmail map[string]*Donor
}

func NewLinker(donors []Donor) *Linker {
	l := &Linker{
		byID:    make(map[uint]*Donor, len(donors)),
		byEmail: make(map[string]*Donor, len(donors)),
	}
	for i := range donors {
		d := &donors[i]
		l.byID[d.ID] = d
		email := NormalizeEmail(d.Email)
		if email == "" {
			continue
		}
		if prev, ok := l.byEmail[email]; !ok || d.ID < prev.ID {
			l.byEmail[email] = d
		}
	}
	return l
}

// Resolve returns the linked donor, or nil when neither path matches.
func (l *Linker) Resolve(donorID *uint, email string) *Donor {
	if donorID != nil {
		if d, ok := l.byID[*donorID]; ok {
			return d
		}
	}
	if d, ok := l.byEmail[NormalizeEmail(email)]; ok {
		return d
	}
	return nil
}

// Key is a stable identity for grouping gifts by giver. Linked gifts share the
// donor's key; unlinked gifts fall back to their email. Empty means anonymous.
func (l *Linker) Key(donorID *uint, email string) string {
	if d := l.Resolve(donorID, email); d != nil {
		return "donor:" + strconv.FormatUint(uint64(d.ID), 10)
	}
	if e := NormalizeEmail(email); e != "" {
		return "email:" + e
	}
	return ""
}

// Refs collects the donor ids and emails referenced by transactions.
func Refs(txns []Transaction) (ids []uint, emails []string) {
	seenID := make(map[uint]bool)
	seenEmail := make(map[string]bool)
	for _, t := range txns {
		if t.DonorID != nil && !seenID[*t.DonorID] {
			seenID[*t.DonorID] = true
			ids = append(ids, *t.DonorID)
		}
		if e := NormalizeEmail(t.Email); e != "" && !seenEmail[e] {
			seenEmail[e] = true
			emails = append(emails, e)
		}
	}
	return ids, emails
}
