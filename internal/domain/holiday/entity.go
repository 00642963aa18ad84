package holiday

import "time"

type Holiday struct {
	ID        int
	Date      time.Time
	Name      string
	CreatedAt time.Time
}
