package main

import (
	"os"

	"github.com/spf13/cobra"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name = "risk_radar"
	// Version 是服务的版本号
	Version = "dev"

	id, _ = os.Hostname()
)

// defaultConf 默认配置文件路径，相对仓库根目录
const defaultConf = "app/risk_radar/configs/config.yaml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "risk_radar",
		Short: "Company risk scanning over GDELT news coverage",
		Long: `risk_radar fetches recent news about a company from the GDELT DOC API,
scores the coverage for supply-chain and reputational risk signals, and
serves the assessment over HTTP with a result cache in front of it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("conf", defaultConf, "config path, eg: --conf config.yaml")

	root.AddCommand(newServeCmd(), newScanCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
