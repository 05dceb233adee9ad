package magic

// byLength buckets IDs by the byte length of their string. Built once in
// init and never mutated afterwards, so concurrent readers are safe.
var byLength [][]ID

func init() {
	longest := 0
	for _, s := range names {
		if s == "" {
			panic("magic: table has an unnamed entry")
		}
		if len(s) > longest {
			longest = len(s)
		}
	}
	byLength = make([][]ID, longest+1)
	seen := make(map[string]ID, Count)
	for i, s := range names {
		if prev, dup := seen[s]; dup {
			panic("magic: duplicate string " + s + " (also " + prev.String() + ")")
		}
		seen[s] = ID(i)
		byLength[len(s)] = append(byLength[len(s)], ID(i))
	}
}

// Recognize reports whether name is exactly one of the magic strings and
// returns its ID. It never allocates.
func Recognize(name string) (ID, bool) {
	n := len(name)
	if n == 0 || n >= len(byLength) {
		return 0, false
	}
	first := name[0]
	for _, id := range byLength[n] {
		s := names[id]
		if s[0] == first && s == name {
			return id, true
		}
	}
	return 0, false
}

// MustRecognize is Recognize for names known at compile time.
func MustRecognize(name string) ID {
	id, ok := Recognize(name)
	if !ok {
		panic("magic: not a magic string: " + name)
	}
	return id
}
