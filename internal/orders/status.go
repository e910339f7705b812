package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

// Urutan tampil di dapur: pending dulu, status tak dikenal paling akhir.
var rank = map[Status]int{
	StatusPending:   1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

// Rank returns the listing priority of s (pending=1 ... completed=4, anything else 5).
func Rank(s Status) int {
	if r, ok := rank[s]; ok {
		return r
	}
	return 5
}

// ParseStatus accepts exactly the four known values. There is no transition
// table: any known status may be set from any other.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := rank[st]
	return st, ok
}
