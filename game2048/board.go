// Package game2048 holds the board vocabulary shared by the browser-backed
// and the in-process environments: the 4x4 matrix, the four moves and the
// slide/merge rules of the game.
package game2048

import "math/rand"

// Size is the board dimension.
const Size = 4

// Board is a 4x4 matrix of tile magnitudes. 0 denotes an empty cell.
// Rows and columns are indexed 0-3.
type Board [Size][Size]int

// compactRow slides a single row towards index 0, merging equal neighbours
// once. Returns the resulting row and the score gained from merges.
func compactRow(row [Size]int) ([Size]int, int) {
	var out [Size]int
	gained := 0
	write := 0
	for i := 0; i < Size; i++ {
		if row[i] == 0 {
			continue
		}
		if write > 0 && out[write-1] == row[i] {
			out[write-1] *= 2
			gained += out[write-1]
			// negate so a merged tile cannot merge again this move
			out[write-1] = -out[write-1]
			continue
		}
		out[write] = row[i]
		write++
	}
	for i := range out {
		if out[i] < 0 {
			out[i] = -out[i]
		}
	}
	return out, gained
}

func reversed(row [Size]int) [Size]int {
	var out [Size]int
	for i := 0; i < Size; i++ {
		out[i] = row[Size-1-i]
	}
	return out
}

func (b Board) transposed() Board {
	var out Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			out[r][c] = b[c][r]
		}
	}
	return out
}

// Apply performs a move and reports the resulting board, the score gained
// by merges and whether the board changed at all. A move that changes
// nothing is a legal no-op.
func (b Board) Apply(m Move) (Board, int, bool) {
	switch m {
	case Left:
		return b.slideLeft()
	case Right:
		return b.slideRight()
	case Up:
		t, gained, changed := b.transposed().slideLeft()
		return t.transposed(), gained, changed
	case Down:
		t, gained, changed := b.transposed().slideRight()
		return t.transposed(), gained, changed
	}
	return b, 0, false
}

func (b Board) slideLeft() (Board, int, bool) {
	var out Board
	gained := 0
	changed := false
	for r := 0; r < Size; r++ {
		row, rowGain := compactRow(b[r])
		out[r] = row
		gained += rowGain
		if row != b[r] {
			changed = true
		}
	}
	return out, gained, changed
}

func (b Board) slideRight() (Board, int, bool) {
	var out Board
	gained := 0
	changed := false
	for r := 0; r < Size; r++ {
		row, rowGain := compactRow(reversed(b[r]))
		out[r] = reversed(row)
		gained += rowGain
		if out[r] != b[r] {
			changed = true
		}
	}
	return out, gained, changed
}

// EmptyCells lists the (row, col) coordinates of all empty cells.
func (b Board) EmptyCells() [][2]int {
	cells := make([][2]int, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == 0 {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// CanMove reports whether any of the four moves would change the board.
func (b Board) CanMove() bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == 0 {
				return true
			}
			if c < Size-1 && b[r][c] == b[r][c+1] {
				return true
			}
			if r < Size-1 && b[r][c] == b[r+1][c] {
				return true
			}
		}
	}
	return false
}

// MaxTile is the largest tile magnitude on the board.
func (b Board) MaxTile() int {
	max := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] > max {
				max = b[r][c]
			}
		}
	}
	return max
}

// Spawn places a new tile (2 with probability 1-fourProb, else 4) on a
// uniformly chosen empty cell. No-op on a full board.
func (b Board) Spawn(rng *rand.Rand, fourProb float64) Board {
	cells := b.EmptyCells()
	if len(cells) == 0 {
		return b
	}
	cell := cells[rng.Intn(len(cells))]
	value := 2
	if rng.Float64() < fourProb {
		value = 4
	}
	b[cell[0]][cell[1]] = value
	return b
}
