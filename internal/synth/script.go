package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

func renderScript(def domain.StrategyDefinition) string {
	var b strings.Builder
	class := ClassName(def.Name)

	fmt.Fprintf(&b, "# Generated Trading Strategy: %s\n", singleLine(def.Name))
	fmt.Fprintf(&b, "# Type: %s\n", def.Type)
	b.WriteString("import pandas as pd\n")
	b.WriteString("import numpy as np\n")
	b.WriteString("from trading_framework import Strategy, Indicator\n\n\n")

	fmt.Fprintf(&b, "class %s(Strategy):\n", class)
	b.WriteString("    def __init__(self):\n")
	b.WriteString("        super().__init__()\n")
	fmt.Fprintf(&b, "        self.asset_class = %s\n", strconv.Quote(enumLiteral(def.AssetClass)))
	fmt.Fprintf(&b, "        self.timeframe = %s\n", strconv.Quote(string(def.Timeframe)))
	fmt.Fprintf(&b, "        self.use_trailing_stop = %s\n", pyBool(def.UseTrailingStop))
	fmt.Fprintf(&b, "        self.max_positions = %d\n", def.MaxPositions)
	b.WriteString("\n")

	b.WriteString("    def setup_indicators(self):\n")
	b.WriteString("        self.rsi = Indicator.RSI(period=14)\n")
	b.WriteString("        self.sma_20 = Indicator.SMA(period=20)\n\n")

	b.WriteString("    def entry_conditions(self, data):\n")
	fmt.Fprintf(&b, "        # Entry logic based on %s strategy\n", enumLiteral(def.Type))
	b.WriteString("        return data['rsi'] > 70 and data['close'] > data['sma_20']\n\n")

	b.WriteString("    def exit_conditions(self, data, position):\n")
	fmt.Fprintf(&b, "        profit_target = %s\n", FormatPercent(def.ProfitTargetPct))
	fmt.Fprintf(&b, "        stop_loss = %s\n", FormatPercent(def.StopLossPct))
	b.WriteString("        return (\n")
	b.WriteString("            position.unrealized_pnl_pct >= profit_target or\n")
	b.WriteString("            position.unrealized_pnl_pct <= -stop_loss\n")
	b.WriteString("        )\n\n")

	b.WriteString("    def position_size(self, data):\n")
	fmt.Fprintf(&b, "        max_risk = %s\n", FormatPercent(def.MaxRiskPct))
	b.WriteString("        return self.calculate_position_size(max_risk)")
	return b.String()
}
