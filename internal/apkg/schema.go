package apkg

import (
	"encoding/json"
	"strconv"
)

const schemaVersion = 11

// collectionSchema is the Anki 2.1 legacy collection layout.
var collectionSchema = []string{
	`CREATE TABLE col (
		id     integer primary key,
		crt    integer not null,
		mod    integer not null,
		scm    integer not null,
		ver    integer not null,
		dty    integer not null,
		usn    integer not null,
		ls     integer not null,
		conf   text not null,
		models text not null,
		decks  text not null,
		dconf  text not null,
		tags   text not null
	)`,
	`CREATE TABLE notes (
		id    integer primary key,
		guid  text not null,
		mid   integer not null,
		mod   integer not null,
		usn   integer not null,
		tags  text not null,
		flds  text not null,
		sfld  integer not null,
		csum  integer not null,
		flags integer not null,
		data  text not null
	)`,
	`CREATE TABLE cards (
		id     integer primary key,
		nid    integer not null,
		did    integer not null,
		ord    integer not null,
		mod    integer not null,
		usn    integer not null,
		type   integer not null,
		queue  integer not null,
		due    integer not null,
		ivl    integer not null,
		factor integer not null,
		reps   integer not null,
		lapses integer not null,
		left   integer not null,
		odue   integer not null,
		odid   integer not null,
		flags  integer not null,
		data   text not null
	)`,
	`CREATE TABLE revlog (
		id      integer primary key,
		cid     integer not null,
		usn     integer not null,
		ease    integer not null,
		ivl     integer not null,
		lastIvl integer not null,
		factor  integer not null,
		time    integer not null,
		type    integer not null
	)`,
	`CREATE TABLE graves (
		usn  integer not null,
		oid  integer not null,
		type integer not null
	)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
}

const modelCSS = `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}
img { max-width: 100%; }`

type field struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
	RTL    bool     `json:"rtl"`
	Sticky bool     `json:"sticky"`
}

type template struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
	DID   *int64 `json:"did"`
}

type model struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      int        `json:"type"`
	Mod       int64      `json:"mod"`
	USN       int        `json:"usn"`
	SortF     int        `json:"sortf"`
	DID       int64      `json:"did"`
	Tmpls     []template `json:"tmpls"`
	Flds      []field    `json:"flds"`
	CSS       string     `json:"css"`
	LatexPre  string     `json:"latexPre"`
	LatexPost string     `json:"latexPost"`
	Req       []any      `json:"req"`
	Tags      []string   `json:"tags"`
	Vers      []int      `json:"vers"`
}

type deck struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	Mod       int64  `json:"mod"`
	USN       int    `json:"usn"`
	Conf      int64  `json:"conf"`
	Dyn       int    `json:"dyn"`
	Collapsed bool   `json:"collapsed"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
	NewToday  [2]int `json:"newToday"`
	RevToday  [2]int `json:"revToday"`
	LrnToday  [2]int `json:"lrnToday"`
	TimeToday [2]int `json:"timeToday"`
}

// collectionJSON renders the conf, models, decks and dconf columns of col.
func collectionJSON(deckID, modelID int64, deckName string, mod int64) (conf, models, decks, dconf string, err error) {
	confDoc := map[string]any{
		"activeDecks":   []int64{deckID},
		"curDeck":       deckID,
		"curModel":      strconv.FormatInt(modelID, 10),
		"addToCur":      true,
		"collapseTime":  1200,
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}

	basic := model{
		ID:    modelID,
		Name:  "Basic",
		Mod:   mod,
		USN:   -1,
		DID:   deckID,
		SortF: 0,
		Tmpls: []template{{
			Name: "Card 1",
			QFmt: "{{Front}}",
			AFmt: "{{FrontSide}}<hr id=answer>{{Back}}",
		}},
		Flds: []field{
			{Name: "Front", Ord: 0, Font: "Arial", Size: 20, Media: []string{}},
			{Name: "Back", Ord: 1, Font: "Arial", Size: 20, Media: []string{}},
		},
		CSS: modelCSS,
		LatexPre: "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
			"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n" +
			"\\setlength{\\parindent}{0in}\n\\begin{document}\n",
		LatexPost: "\\end{document}",
		Req:       []any{[]any{0, "all", []int{0}}},
		Tags:      []string{},
		Vers:      []int{},
	}

	defaultDeck := newDeck(1, "Default", mod)
	exportDeck := newDeck(deckID, deckName, mod)

	dconfDoc := map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      0,
			"usn":      0,
			"maxTaken": 60,
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"new": map[string]any{
				"bury": true, "delays": []int{1, 10}, "initialFactor": 2500,
				"ints": []int{1, 4, 7}, "order": 1, "perDay": 20, "separate": true,
			},
			"lapse": map[string]any{
				"delays": []int{10}, "leechAction": 0, "leechFails": 8, "minInt": 1, "mult": 0,
			},
			"rev": map[string]any{
				"bury": true, "ease4": 1.3, "fuzz": 0.05, "ivlFct": 1,
				"maxIvl": 36500, "minSpace": 1, "perDay": 100,
			},
		},
	}

	docs := []any{
		confDoc,
		map[string]model{strconv.FormatInt(modelID, 10): basic},
		map[string]deck{"1": defaultDeck, strconv.FormatInt(deckID, 10): exportDeck},
		dconfDoc,
	}
	out := make([]string, len(docs))
	for i, doc := range docs {
		b, marshalErr := json.Marshal(doc)
		if marshalErr != nil {
			return "", "", "", "", marshalErr
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], out[3], nil
}

func newDeck(id int64, name string, mod int64) deck {
	return deck{
		ID:        id,
		Name:      name,
		Mod:       mod,
		USN:       -1,
		Conf:      1,
		ExtendNew: 10,
		ExtendRev: 50,
	}
}
