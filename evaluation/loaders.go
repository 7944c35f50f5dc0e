package evaluation

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/domino14/caissa/move"
)

// tablesFile is the on-disk form. Every section is optional; whatever is
// present overrides the defaults.
type tablesFile struct {
	PieceValues map[string]int   `yaml:"piece_values,omitempty"`
	Tempo       *int             `yaml:"tempo,omitempty"`
	Mobility    map[string]int   `yaml:"mobility,omitempty"`
	Middlegame  map[string][]int `yaml:"middlegame,omitempty"`
	Endgame     map[string][]int `yaml:"endgame,omitempty"`
}

var pieceNames = map[string]move.PieceType{
	"pawn":   move.Pawn,
	"knight": move.Knight,
	"bishop": move.Bishop,
	"rook":   move.Rook,
	"queen":  move.Queen,
	"king":   move.King,
}

func lookupPiece(name string) (move.PieceType, error) {
	p, ok := pieceNames[name]
	if !ok {
		return move.None, fmt.Errorf("unknown piece %q", name)
	}
	return p, nil
}

func overlayTable(dst *[move.NumPieceTypes][64]int, src map[string][]int, phase string) error {
	for name, vals := range src {
		p, err := lookupPiece(name)
		if err != nil {
			return err
		}
		if len(vals) != 64 {
			return fmt.Errorf("%s table for %s has %d entries, want 64", phase, name, len(vals))
		}
		copy(dst[p][:], vals)
	}
	return nil
}

// LoadTables reads YAML overrides on top of DefaultTables.
func LoadTables(r io.Reader) (*Tables, error) {
	tf := tablesFile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding tables: %w", err)
	}
	t := DefaultTables()
	for name, v := range tf.PieceValues {
		p, err := lookupPiece(name)
		if err != nil {
			return nil, err
		}
		t.PieceValues[p] = v
	}
	for name, v := range tf.Mobility {
		p, err := lookupPiece(name)
		if err != nil {
			return nil, err
		}
		t.Mobility[p] = v
	}
	if tf.Tempo != nil {
		t.Tempo = *tf.Tempo
	}
	if err := overlayTable(&t.Middlegame, tf.Middlegame, "middlegame"); err != nil {
		return nil, err
	}
	if err := overlayTable(&t.Endgame, tf.Endgame, "endgame"); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTablesFile is LoadTables on a path. An empty path yields the defaults.
func LoadTablesFile(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTables(f)
}

// WriteTables dumps the full tables as YAML, a starting point for tuning.
func WriteTables(w io.Writer, t *Tables) error {
	tf := tablesFile{
		PieceValues: map[string]int{},
		Tempo:       &t.Tempo,
		Mobility:    map[string]int{},
		Middlegame:  map[string][]int{},
		Endgame:     map[string][]int{},
	}
	for name, p := range pieceNames {
		tf.PieceValues[name] = t.PieceValues[p]
		tf.Mobility[name] = t.Mobility[p]
		tf.Middlegame[name] = append([]int(nil), t.Middlegame[p][:]...)
		tf.Endgame[name] = append([]int(nil), t.Endgame[p][:]...)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(tf)
}
