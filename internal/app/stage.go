package app

// Stage is a step of the startup sequence. Stages only move forward.
type Stage int

const (
	StageUninitialized Stage = iota
	StageErrorHandlersInstalled
	StageDOMBootstrapped
	StageStoreCreated
	StageComponentsMerged
	StageEventsBound
	StageFavoritesHydrated
	StageIntroSettled
	StageRecordsLoaded
	StageURLHydrated
	StageSyncAttached
	StageReady
)

var stageNames = [...]string{
	StageUninitialized:          "uninitialized",
	StageErrorHandlersInstalled: "error-handlers-installed",
	StageDOMBootstrapped:        "dom-bootstrapped",
	StageStoreCreated:           "store-created",
	StageComponentsMerged:       "components-merged",
	StageEventsBound:            "events-bound",
	StageFavoritesHydrated:      "favorites-hydrated",
	StageIntroSettled:           "intro-settled",
	StageRecordsLoaded:          "records-loaded",
	StageURLHydrated:            "url-hydrated",
	StageSyncAttached:           "sync-attached",
	StageReady:                  "ready",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
