package domain

// UpdateProductInput is a partial update. Absent fields leave the stored
// state alone; present association sets are replaced wholesale.
type UpdateProductInput struct {
	Name          Optional[string]
	Description   Optional[string]
	Categories    Optional[[]string]
	Manufacturers Optional[[]int64]
	Users         Optional[[]int64]
	Version       Optional[int64]
}

// IsEmpty reports whether no field was supplied.
func (in UpdateProductInput) IsEmpty() bool {
	return !in.Name.Present &&
		!in.Description.Present &&
		!in.Categories.Present &&
		!in.Manufacturers.Present &&
		!in.Users.Present
}

// NameChange returns the new name, if any. An empty name means no change.
// TODO: confirm with the product owner whether an explicit "" should be a
// validation error instead, matching how description treats "".
func (in UpdateProductInput) NameChange() (string, bool) {
	if !in.Name.Present || in.Name.Null || in.Name.Value == "" {
		return "", false
	}
	return in.Name.Value, true
}

// DescriptionChange returns the new description whenever the key was sent.
// Explicit null and "" both clear it.
func (in UpdateProductInput) DescriptionChange() (*string, bool) {
	if !in.Description.Present {
		return nil, false
	}
	return normalizeDescription(&in.Description.Value), true
}

// Dedupe removes repeated elements, keeping first occurrences in order.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
