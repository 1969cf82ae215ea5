package catalog

import "herbar/client/internal/state"

const (
	ActionLoadStarted      = "catalog/loadStarted"
	ActionLoaded           = "catalog/loaded"
	ActionLoadFailed       = "catalog/loadFailed"
	ActionSetQuery         = "catalog/setQuery"
	ActionSetSort          = "catalog/setSort"
	ActionToggleTag        = "catalog/toggleTag"
	ActionSetTags          = "catalog/setTags"
	ActionClearFilters     = "catalog/clearFilters"
	ActionDetailLoaded     = "catalog/detailLoaded"
	ActionInvalidateDetail = "catalog/invalidateDetail"
	ActionModalRequested   = "catalog/modalRequested"
	ActionModalOpened      = "catalog/modalOpened"
	ActionModalClosed      = "catalog/modalClosed"
	ActionCopyStatus       = "catalog/copyStatus"
)

type detailPayload struct {
	ID     int
	Detail Detail
}

type modalPayload struct {
	Token   uint64
	Context ModalContext
}

// LoadStarted marks the bulk load as in flight and clears a previous error.
func LoadStarted() state.Action { return state.Action{Type: ActionLoadStarted} }

// Loaded replaces the record list. Records are expected to be ingested.
func Loaded(records []Record) state.Action {
	return state.Action{Type: ActionLoaded, Payload: records}
}

// LoadFailed ends the bulk load with reason.
func LoadFailed(reason string) state.Action {
	return state.Action{Type: ActionLoadFailed, Payload: reason}
}

// SetQuery replaces the free-text query.
func SetQuery(query string) state.Action { return state.Action{Type: ActionSetQuery, Payload: query} }

// SetSort selects the comparator; an empty key means DefaultSort.
func SetSort(key SortKey) state.Action { return state.Action{Type: ActionSetSort, Payload: key} }

// ToggleTag adds tag to the active tags or removes it.
func ToggleTag(tag string) state.Action { return state.Action{Type: ActionToggleTag, Payload: tag} }

// SetTags replaces the active tags.
func SetTags(tags []string) state.Action { return state.Action{Type: ActionSetTags, Payload: tags} }

// ClearFilters resets query, tags and sort.
func ClearFilters() state.Action { return state.Action{Type: ActionClearFilters} }

// DetailLoadedAction augments record id with detail in place.
func DetailLoadedAction(id int, detail Detail) state.Action {
	return state.Action{Type: ActionDetailLoaded, Payload: detailPayload{ID: id, Detail: detail}}
}

// InvalidateDetail drops the detail fields of record id.
func InvalidateDetail(id int) state.Action {
	return state.Action{Type: ActionInvalidateDetail, Payload: id}
}

// ModalRequested records token as the latest navigation request.
func ModalRequested(token uint64) state.Action {
	return state.Action{Type: ActionModalRequested, Payload: token}
}

// ModalOpened focuses ctx.Current if token is still the latest request.
func ModalOpened(token uint64, ctx ModalContext) state.Action {
	return state.Action{Type: ActionModalOpened, Payload: modalPayload{Token: token, Context: ctx}}
}

// OpenedToken returns the request token carried by a ModalOpened action.
func OpenedToken(a state.Action) (uint64, bool) {
	p, ok := a.Payload.(modalPayload)
	if a.Type != ActionModalOpened || !ok {
		return 0, false
	}
	return p.Token, true
}

// ModalClosed drops the modal context. A non-zero token also supersedes any
// open request still in flight.
func ModalClosed(token uint64) state.Action {
	return state.Action{Type: ActionModalClosed, Payload: token}
}

// SetCopyStatus sets the copy-link button state.
func SetCopyStatus(status CopyStatus) state.Action {
	return state.Action{Type: ActionCopyStatus, Payload: status}
}
