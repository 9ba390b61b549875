package billing

import (
	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/identity"
)

// BranchScoped is anything carrying an optional branch reference
type BranchScoped interface {
	BranchRef() *uuid.UUID
}

// FilterByAllowedBranches keeps only records whose branch the caller
// may see. Unrestricted callers see everything; for restricted callers
// a record without a branch never matches.
func FilterByAllowedBranches[T BranchScoped](records []T, caller identity.Caller) []T {
	if !caller.IsRestricted() {
		return records
	}
	var out []T
	for _, rec := range records {
		ref := rec.BranchRef()
		if ref != nil && caller.CanAccessBranch(*ref) {
			out = append(out, rec)
		}
	}
	return out
}
