package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

func renderCompiled(def domain.StrategyDefinition) string {
	var b strings.Builder
	class := ClassName(def.Name)

	fmt.Fprintf(&b, "// Generated Trading Strategy: %s\n", singleLine(def.Name))
	b.WriteString("import com.aitrader.framework.*;\n")
	b.WriteString("import com.aitrader.indicators.*;\n")
	b.WriteString("\n")

	fmt.Fprintf(&b, "public class %s extends Strategy {\n", class)
	fmt.Fprintf(&b, "    public %s() {\n", class)
	b.WriteString("        super();\n")
	fmt.Fprintf(&b, "        this.assetClass = %s;\n", strconv.Quote(enumLiteral(def.AssetClass)))
	fmt.Fprintf(&b, "        this.timeframe = %s;\n", strconv.Quote(string(def.Timeframe)))
	fmt.Fprintf(&b, "        this.useTrailingStop = %t;\n", def.UseTrailingStop)
	fmt.Fprintf(&b, "        this.maxPositions = %d;\n", def.MaxPositions)
	b.WriteString("    }\n\n")

	b.WriteString("    @Override\n")
	b.WriteString("    protected void setupIndicators() {\n")
	b.WriteString("        addIndicator(new RSI(14));\n")
	b.WriteString("        addIndicator(new SMA(20));\n")
	b.WriteString("    }\n\n")

	b.WriteString("    @Override\n")
	b.WriteString("    public boolean entryConditions(MarketData data) {\n")
	fmt.Fprintf(&b, "        // Entry logic based on %s strategy\n", enumLiteral(def.Type))
	b.WriteString("        return data.getRsi() > 70 && data.getPrice() > data.getSma20();\n")
	b.WriteString("    }\n\n")

	b.WriteString("    @Override\n")
	b.WriteString("    public boolean exitConditions(MarketData data, Position position) {\n")
	fmt.Fprintf(&b, "        double profitTarget = %s;\n", FormatPercent(def.ProfitTargetPct))
	fmt.Fprintf(&b, "        double stopLoss = %s;\n", FormatPercent(def.StopLossPct))
	b.WriteString("        return position.getUnrealizedPnlPct() >= profitTarget ||\n")
	b.WriteString("               position.getUnrealizedPnlPct() <= -stopLoss;\n")
	b.WriteString("    }\n\n")

	b.WriteString("    @Override\n")
	b.WriteString("    public double positionSize(MarketData data) {\n")
	fmt.Fprintf(&b, "        double maxRisk = %s;\n", FormatPercent(def.MaxRiskPct))
	b.WriteString("        return calculatePositionSize(maxRisk);\n")
	b.WriteString("    }\n")
	b.WriteString("}")
	return b.String()
}
