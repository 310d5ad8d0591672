package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"mintrader/internal/domain/iteration"
	"mintrader/internal/domain/portfolio"
)

// Constraints are the portfolio-level limits applied to every proposed
// trade. Immutable for the duration of an iteration.
type Constraints struct {
	MaxPositionSizePct float64
	MinCashReservePct  float64
	MaxTradesPerDay    int
	MinHoldingDays     int
	StopLossPct        float64
	MinConvictionScore int
}

// Rule names recorded on rejections
const (
	RuleConviction    = "min_conviction"
	RuleCash          = "insufficient_cash"
	RulePositionSize  = "position_size_cap"
	RuleCashReserve   = "cash_reserve_floor"
	RuleNoPosition    = "no_position"
	RuleHoldingPeriod = "min_holding_period"
	RuleDailyTradeCap = "daily_trade_cap"
	RuleUnknownAction = "unknown_action"
)

// Verdict is the outcome of validating one intent
type Verdict struct {
	Allowed bool
	Rule    string
	Reason  string
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func reject(rule, format string, args ...interface{}) Verdict {
	return Verdict{Allowed: false, Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// ValidateTrade checks one proposed trade against the account snapshot and
// limits. Pure: it never mutates its inputs and touches no external state.
// Rules run in a fixed order and the first failure wins. The daily trade
// counter is passed in by the caller, which increments it only after a
// successful submission.
func ValidateTrade(intent iteration.TradeIntent, account *portfolio.Account, positions []portfolio.Position, c Constraints, tradesToday int) Verdict {
	if intent.Conviction < c.MinConvictionScore {
		return reject(RuleConviction, "conviction %d below minimum %d", intent.Conviction, c.MinConvictionScore)
	}

	switch intent.Action {
	case "buy":
		if v := validateBuy(intent, account, c); !v.Allowed {
			return v
		}
	case "sell":
		if v := validateSell(intent, positions, c); !v.Allowed {
			return v
		}
	default:
		return reject(RuleUnknownAction, "unknown action %q", intent.Action)
	}

	if tradesToday >= c.MaxTradesPerDay {
		return reject(RuleDailyTradeCap, "daily trade limit reached (%d/%d)", tradesToday, c.MaxTradesPerDay)
	}

	return allow()
}

func validateBuy(intent iteration.TradeIntent, account *portfolio.Account, c Constraints) Verdict {
	cost := decimal.NewFromFloat(intent.Notional())
	cash := account.Cash
	value := account.PortfolioValue

	if cost.GreaterThan(cash) {
		return reject(RuleCash, "estimated cost %s exceeds available cash %s",
			cost.StringFixed(2), cash.StringFixed(2))
	}

	if value.IsPositive() {
		maxPosition := value.Mul(decimal.NewFromFloat(c.MaxPositionSizePct / 100))
		if cost.GreaterThan(maxPosition) {
			return reject(RulePositionSize, "position %s exceeds %.1f%% cap (%s)",
				cost.StringFixed(2), c.MaxPositionSizePct, maxPosition.StringFixed(2))
		}

		reserve := value.Mul(decimal.NewFromFloat(c.MinCashReservePct / 100))
		if cash.Sub(cost).LessThan(reserve) {
			return reject(RuleCashReserve, "buy would leave cash %s below %.1f%% reserve (%s)",
				cash.Sub(cost).StringFixed(2), c.MinCashReservePct, reserve.StringFixed(2))
		}
	}

	return allow()
}

func validateSell(intent iteration.TradeIntent, positions []portfolio.Position, c Constraints) Verdict {
	pos := portfolio.FindPosition(positions, intent.Ticker)
	if pos == nil {
		return reject(RuleNoPosition, "no position in %s", intent.Ticker)
	}

	qty := decimal.NewFromFloat(intent.Quantity)
	if qty.GreaterThan(pos.Quantity) {
		return reject(RuleNoPosition, "sell quantity %s exceeds held %s",
			qty.String(), pos.Quantity.String())
	}

	// Stop-loss overrides the anti-churn rule: a deep enough loss may always
	// be cut. Unknown holding age (-1) skips the rule entirely.
	if pos.HoldingDays >= 0 && pos.HoldingDays < c.MinHoldingDays {
		if pos.UnrealizedPnLPct > -c.StopLossPct {
			return reject(RuleHoldingPeriod, "held %d days, minimum %d (pnl %.2f%% above stop-loss -%.1f%%)",
				pos.HoldingDays, c.MinHoldingDays, pos.UnrealizedPnLPct, c.StopLossPct)
		}
	}

	return allow()
}
