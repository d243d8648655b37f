package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func buy(sym string) model.Signal  { return model.Signal{Symbol: sym, Kind: model.SignalBuy} }
func sell(sym string) model.Signal { return model.Signal{Symbol: sym, Kind: model.SignalSell} }

func TestReconcile_BuyThenSellSameRun(t *testing.T) {
	owned := model.NewOwnershipRecord()
	accepted := Reconcile(owned, []model.Signal{buy("X"), sell("X")})

	require.Len(t, accepted, 2)
	assert.Equal(t, model.SignalBuy, accepted[0].Kind)
	assert.Equal(t, model.SignalSell, accepted[1].Kind)
	assert.False(t, owned.Owns("X"))
}

func TestReconcile_SellBeforeBuyInInputStillBuysFirst(t *testing.T) {
	owned := model.NewOwnershipRecord()
	accepted := Reconcile(owned, []model.Signal{sell("X"), buy("X")})

	require.Len(t, accepted, 2)
	assert.Equal(t, model.SignalBuy, accepted[0].Kind)
	assert.Equal(t, model.SignalSell, accepted[1].Kind)
	assert.False(t, owned.Owns("X"))
}

func TestReconcile_Idempotent(t *testing.T) {
	owned := model.NewOwnershipRecord("HELD")
	signals := []model.Signal{buy("NEW"), sell("HELD"), buy("OTHER")}

	first := Reconcile(owned, signals)
	assert.Len(t, first, 3)
	assert.Equal(t, []string{"NEW", "OTHER"}, owned.Symbols())

	second := Reconcile(owned, []model.Signal{buy("NEW"), buy("OTHER")})
	assert.Empty(t, second)
	assert.Equal(t, []string{"NEW", "OTHER"}, owned.Symbols())
}

func TestReconcile_DropsInvalidTransitions(t *testing.T) {
	owned := model.NewOwnershipRecord("A")
	accepted := Reconcile(owned, []model.Signal{buy("A"), sell("B")})
	assert.Empty(t, accepted)
	assert.Equal(t, []string{"A"}, owned.Symbols())
}

func TestReconcile_DuplicateBuyAcrossHorizons(t *testing.T) {
	owned := model.NewOwnershipRecord()
	weekly := buy("A")
	weekly.Horizon = model.IntervalWeekly
	monthly := buy("A")
	monthly.Horizon = model.IntervalMonthly

	accepted := Reconcile(owned, []model.Signal{weekly, monthly})
	require.Len(t, accepted, 1)
	assert.Equal(t, model.IntervalWeekly, accepted[0].Horizon)
	assert.Equal(t, 1, owned.Len())
}

func TestReconcile_NilRecordIsEmpty(t *testing.T) {
	var accepted []model.Signal
	require.NotPanics(t, func() {
		accepted = Reconcile(nil, []model.Signal{buy("A"), sell("B"), buy("A")})
	})
	require.Len(t, accepted, 1)
	assert.Equal(t, buy("A"), accepted[0])
}
