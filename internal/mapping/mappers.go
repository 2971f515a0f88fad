package mapping

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// RegisterDefaults wires the reference mapper set covering every instrument
// variant the desk trades. Order matters only for overlapping qualifiers;
// these are disjoint by kind.
func RegisterDefaults(reg *Registry) {
	reg.Register(KindQualifier(instrument.KindEquity), equityMapper{})
	reg.Register(KindQualifier(instrument.KindOption), optionMapper{})
	reg.Register(KindQualifier(instrument.KindFutures), futuresMapper{})
	reg.Register(KindQualifier(instrument.KindFX), fxMapper{})
	reg.Register(KindQualifier(instrument.KindIRSwap), irSwapMapper{})
	reg.Register(KindQualifier(instrument.KindSwaption), swaptionMapper{})
	reg.Register(KindQualifier(instrument.KindCDS), cdsMapper{})
}

func baseProduct(in rfq.Input, taxonomy string, class product.AssetClass, payouts []product.Payout) (product.Product, error) {
	pid, err := values.NewNonEmptyString("PROD-" + in.RFQID.String())
	if err != nil {
		return product.Product{}, err
	}
	tax, err := values.NewNonEmptyString(taxonomy)
	if err != nil {
		return product.Product{}, err
	}
	return product.New(product.Product{
		ProductID:    pid,
		TaxonomyCode: tax,
		AssetClass:   class,
		Economics: product.Economics{
			Notional: in.Notional,
			Currency: in.Currency,
			Side:     in.Side,
		},
		Payouts: payouts,
	})
}

func payout(t product.PayoutType, desc string) product.Payout {
	return product.Payout{Type: t, Description: values.MustNonEmptyString(desc)}
}

type equityMapper struct{}

func (equityMapper) Name() string { return "equity" }

func (equityMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.Equity)
	return baseProduct(in, "EQ.CASH", product.AssetEquity, []product.Payout{
		payout(product.PayoutPerformance, fmt.Sprintf("Cash equity %s", d.Underlying)),
		payout(product.PayoutSettlement, "DVP settlement"),
	})
}

type optionMapper struct{}

func (optionMapper) Name() string { return "option" }

func (optionMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.Option)
	return baseProduct(in, "EQ.OPT.VANILLA", product.AssetEquity, []product.Payout{
		payout(product.PayoutOption, fmt.Sprintf("%s %s %s on %s strike %s expiring %s",
			d.Style, d.Settlement, d.Type, d.Underlying, d.Strike, d.Expiry)),
	})
}

type futuresMapper struct{}

func (futuresMapper) Name() string { return "futures" }

func (futuresMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.Futures)
	return baseProduct(in, "EQ.FUT", product.AssetEquity, []product.Payout{
		payout(product.PayoutForward, fmt.Sprintf("Futures on %s, contract size %s, expiry %s",
			d.Underlying, d.ContractSize, d.Expiry)),
		payout(product.PayoutSettlement, fmt.Sprintf("%s settlement, last trading %s", d.Settlement, d.LastTrading)),
	})
}

type fxMapper struct{}

func (fxMapper) Name() string { return "fx" }

func (fxMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.FX)
	taxonomy := "FX.SPOT"
	switch d.Type {
	case instrument.FXForward:
		taxonomy = "FX.FWD"
	case instrument.FXNDF:
		taxonomy = "FX.NDF"
	}
	payouts := []product.Payout{
		payout(product.PayoutForward, fmt.Sprintf("%s %s settling %s", d.Type, d.Pair, d.SettlementDate)),
	}
	if d.Type == instrument.FXNDF {
		payouts = append(payouts, payout(product.PayoutSettlement,
			fmt.Sprintf("Non-deliverable, fixing %s via %s", d.FixingDate, d.FixingSource)))
	}
	return baseProduct(in, taxonomy, product.AssetFX, payouts)
}

type irSwapMapper struct{}

func (irSwapMapper) Name() string { return "ir_swap" }

func (irSwapMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.IRSwap)
	return baseProduct(in, "IR.SWAP.FIXED_FLOAT", product.AssetRates, []product.Payout{
		payout(product.PayoutInterestRate, fmt.Sprintf("Fixed leg %s%% %s %s", d.FixedRate, d.DayCount, d.Frequency)),
		payout(product.PayoutInterestRate, fmt.Sprintf("Floating leg %s %s %s", d.FloatingIndex, d.DayCount, d.Frequency)),
	})
}

type swaptionMapper struct{}

func (swaptionMapper) Name() string { return "swaption" }

func (swaptionMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.Swaption)
	return baseProduct(in, "IR.SWAPTION", product.AssetRates, []product.Payout{
		payout(product.PayoutOption, fmt.Sprintf("%s option expiring %s into the underlying swap", d.Style, d.OptionExpiry)),
		payout(product.PayoutInterestRate, fmt.Sprintf("Underlying swap fixed %s%% vs %s, %d months",
			d.Swap.FixedRate, d.Swap.FloatingIndex, d.Swap.TenorMonths)),
	})
}

type cdsMapper struct{}

func (cdsMapper) Name() string { return "cds" }

func (cdsMapper) Map(in rfq.Input) (product.Product, error) {
	d := in.Detail.(instrument.CDS)
	return baseProduct(in, "CR.CDS.SINGLE_NAME", product.AssetCredit, []product.Payout{
		payout(product.PayoutCreditDefault, fmt.Sprintf("Protection on %s at %s bps, %s",
			d.ReferenceEntity, d.SpreadBps, d.Restructuring)),
	})
}
