package ray

import "fmt"

// MaxMedia is the capacity of a MediumList.
const MaxMedia = 16

// MediumList is the ordered set of media containing a ray, highest priority
// first.  The front entry governs propagation.
//
// The list is a fixed-size value so that copying it into a fresh ray does not
// allocate.  Entries are references to media owned elsewhere.
type MediumList struct {
	n     int
	media [MaxMedia]Medium
}

// NewMediumList adds each of media in turn.
func NewMediumList(media ...Medium) MediumList {
	l := MediumList{}
	for _, m := range media {
		l.Add(m)
	}
	return l
}

func (l *MediumList) Len() int {
	return l.n
}

func (l *MediumList) At(i int) Medium {
	if i < 0 || i >= l.n {
		panic(fmt.Sprintf("ray: medium list index %d out of range [0, %d)", i, l.n))
	}
	return l.media[i]
}

// Active returns the medium currently governing propagation.  Panics on an
// empty list.
func (l *MediumList) Active() Medium {
	if l.n == 0 {
		panic("ray: active medium requested from empty medium list")
	}
	return l.media[0]
}

// Add inserts m before the first entry whose priority is not greater than m's,
// so m becomes active if nothing outranks it.  Adding to a full list panics.
func (l *MediumList) Add(m Medium) {
	if l.n == MaxMedia {
		panic(fmt.Sprintf("ray: medium list overflow (capacity %d)", MaxMedia))
	}

	pos := l.n
	for i := 0; i < l.n; i++ {
		if l.media[i].Priority() <= m.Priority() {
			pos = i
			break
		}
	}

	copy(l.media[pos+1:l.n+1], l.media[pos:l.n])
	l.media[pos] = m
	l.n++
}

// Remove drops the first (highest priority) instance of m.  Removing a medium
// that is not present does nothing.
func (l *MediumList) Remove(m Medium) {
	for i := 0; i < l.n; i++ {
		if l.media[i] == m {
			copy(l.media[i:l.n-1], l.media[i+1:l.n])
			l.n--
			l.media[l.n] = nil
			return
		}
	}
}
