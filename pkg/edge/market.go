package edge

// Market identifies one betting market. The set is closed so the
// calculator can validate completeness per mutually-exclusive group;
// new markets extend the table below rather than arriving as ad hoc
// strings.
type Market string

const (
	MarketHomeWin Market = "home_win"
	MarketDraw    Market = "draw"
	MarketAwayWin Market = "away_win"
	MarketOver25  Market = "over_2.5"
	MarketUnder25 Market = "under_2.5"
	MarketBTTSYes Market = "btts_yes"
	MarketBTTSNo  Market = "btts_no"
)

// Group names a set of mutually exclusive markets whose probabilities
// must sum to 1.
type Group string

const (
	GroupMatchOdds Group = "match_odds"
	GroupTotals    Group = "totals_2.5"
	GroupBTTS      Group = "btts"
)

var marketGroups = map[Market]Group{
	MarketHomeWin: GroupMatchOdds,
	MarketDraw:    GroupMatchOdds,
	MarketAwayWin: GroupMatchOdds,
	MarketOver25:  GroupTotals,
	MarketUnder25: GroupTotals,
	MarketBTTSYes: GroupBTTS,
	MarketBTTSNo:  GroupBTTS,
}

// Valid reports whether the market is a known one.
func (m Market) Valid() bool {
	_, ok := marketGroups[m]
	return ok
}

// Group returns the mutually-exclusive group the market belongs to.
func (m Market) Group() (Group, bool) {
	g, ok := marketGroups[m]
	return g, ok
}
