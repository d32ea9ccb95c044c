package counterrec

// InstanceId identifies one instance of a multi-instance counter object:
// either a defined unique_id or, lacking one, the instance name.
//
// Equal/Compare follow the reference identification rule: two ids with a
// defined unique_id compare by that id; two ids that both lack one compare
// by name; a defined id and an undefined one are never equal, and a
// defined id always orders after an undefined one.
type InstanceId struct {
	UniqueID    int32
	HasUniqueID bool
	Name        string
}

func InstanceIdByUniqueID(id int32) InstanceId {
	return InstanceId{UniqueID: id, HasUniqueID: true}
}

func InstanceIdByName(name string) InstanceId {
	return InstanceId{Name: name}
}

func (a InstanceId) Equal(b InstanceId) bool {
	return a.Compare(b) == 0
}

// Compare orders a relative to b: -1, 0, or 1. Defined unique_ids compare
// numerically; undefined ids compare by name; a defined id always sorts
// after every undefined id regardless of numeric/lexical value.
func (a InstanceId) Compare(b InstanceId) int {
	switch {
	case a.HasUniqueID && b.HasUniqueID:
		switch {
		case a.UniqueID < b.UniqueID:
			return -1
		case a.UniqueID > b.UniqueID:
			return 1
		default:
			return 0
		}
	case !a.HasUniqueID && !b.HasUniqueID:
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	case a.HasUniqueID && !b.HasUniqueID:
		return 1
	default: // !a.HasUniqueID && b.HasUniqueID
		return -1
	}
}

// CounterId is a counter's name_index offset relative to the provider's
// first counter.
type CounterId uint32
