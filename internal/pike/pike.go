// Package pike implements the Pike VM executor: lockstep simulation of
// the program's equivalent NFA over a subject string, reporting a match
// end index and capture boundaries in linear time.
package pike

import "github.com/brenns10/regex/internal/vmprog"

// NoMatch is returned by Execute when the program does not match the
// subject at all.
const NoMatch = -1

// unvisited is the sentinel lastidx value meaning "this instruction has
// not yet been reached at any input position during this execution".
const unvisited = -1

// unsetCapture is the sentinel a capture slot holds when its group never
// participated in the match.
const unsetCapture = -1

// thread is an NFA state: a program counter paired with the capture
// array accumulated to reach it.
type thread struct {
	pc   int
	caps []int
}

// threadList is a bounded set of threads, capacity equal to the program
// length: addThread's lastidx dedup guarantees at most one thread per
// instruction per input position.
type threadList struct {
	threads []thread
}

func (l *threadList) reset() {
	l.threads = l.threads[:0]
}

// Execute runs program p against subject, simulating the Pike VM. It
// returns the end index of the longest match achievable under the
// program's greedy/non-greedy policy and leftmost-greedy priority
// ordering, or NoMatch, plus the capture slots of the reported match
// (nil on no match). Matching is anchored at position 0; there is no
// implicit leading ".*".
//
// All per-instruction scratch state is allocated fresh on every call
// rather than stored on p, so a single compiled Program may be executed
// concurrently by multiple callers.
func Execute(p *vmprog.Program, subject []byte) (end int, captures []int) {
	n := len(p.Code)
	lastidx := make([]int, n)
	for i := range lastidx {
		lastidx[i] = unvisited
	}

	numSlots := p.NumSlots()
	curr := &threadList{threads: make([]thread, 0, n)}
	next := &threadList{threads: make([]thread, 0, n)}

	initCaps := make([]int, numSlots)
	for i := range initCaps {
		initCaps[i] = unsetCapture
	}

	sp := 0
	end = NoMatch

	if n == 0 {
		return NoMatch, nil
	}

	addThread(p, lastidx, curr, 0, initCaps, sp)

	for {
		if len(curr.threads) == 0 {
			break
		}

		b, atNull := byteAt(subject, sp)

		for _, th := range curr.threads {
			ins := p.Code[th.pc]
			switch ins.Op {
			case vmprog.Char:
				if !atNull && b == ins.C {
					addThread(p, lastidx, next, th.pc+1, th.caps, sp+1)
				}

			case vmprog.Any:
				if !atNull {
					addThread(p, lastidx, next, th.pc+1, th.caps, sp+1)
				}

			case vmprog.Range:
				if !atNull && inRanges(p, ins, b) {
					addThread(p, lastidx, next, th.pc+1, th.caps, sp+1)
				}

			case vmprog.NRange:
				if !atNull && !inRanges(p, ins, b) {
					addThread(p, lastidx, next, th.pc+1, th.caps, sp+1)
				}

			case vmprog.Match:
				end = sp
				captures = th.caps
				// Lower-priority threads in this step cannot improve on
				// a higher-priority thread that already matched.
				goto stepDone
			}
		}
	stepDone:

		if sp >= len(subject) {
			break
		}
		sp++
		curr, next = next, curr
		next.reset()
	}

	return end, captures
}

// byteAt returns the byte at sp, treating any position at or past the
// end of subject as the null terminator of a finite, null-terminated
// subject.
func byteAt(subject []byte, sp int) (b byte, isNull bool) {
	if sp >= len(subject) {
		return 0, true
	}
	return subject[sp], subject[sp] == 0
}

// inRanges reports whether b falls within any of ins's inclusive
// byte-pair ranges.
func inRanges(p *vmprog.Program, ins vmprog.Instruction, b byte) bool {
	pairs := p.Ranges[ins.X : ins.X+ins.S]
	for _, pr := range pairs {
		if pr[0] <= b && b <= pr[1] {
			return true
		}
	}
	return false
}

// addThread computes the epsilon closure from pc: Jump and Split are
// followed without consuming input, Save mutates the capture array in
// place and continues, and any consuming opcode or Match terminates the
// closure by enqueuing a thread. The lastidx dedup check bounds the
// number of threads ever added at a given sp by the program length,
// making execution linear in len(subject) * len(p.Code).
func addThread(p *vmprog.Program, lastidx []int, list *threadList, pc int, caps []int, sp int) {
	if lastidx[pc] == sp {
		return
	}
	lastidx[pc] = sp

	ins := p.Code[pc]
	switch ins.Op {
	case vmprog.Jump:
		addThread(p, lastidx, list, ins.X, caps, sp)

	case vmprog.Split:
		// Copy before following X, so Saves on the X branch do not leak
		// into the Y branch's captures.
		yCaps := cloneCaps(caps)
		addThread(p, lastidx, list, ins.X, caps, sp)
		addThread(p, lastidx, list, ins.Y, yCaps, sp)

	case vmprog.Save:
		caps[ins.S] = sp
		addThread(p, lastidx, list, pc+1, caps, sp)

	default: // Char, Any, Range, NRange, Match
		list.threads = append(list.threads, thread{pc: pc, caps: caps})
	}
}

func cloneCaps(caps []int) []int {
	c := make([]int, len(caps))
	copy(c, caps)
	return c
}
