package rigid3d

import "github.com/duskforge/rigid3d/pool"

// Distinct handle types per pool, so a dynamic handle can never be
// confused with a static or trigger one at compile time, per the
// generational-pool design note.
type (
	DynamicHandle pool.Handle
	StaticHandle  pool.Handle
	TriggerHandle pool.Handle
)
