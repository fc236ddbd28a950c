package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"tokenvest/config"
	"tokenvest/core/events"
	"tokenvest/core/state"
	coretypes "tokenvest/core/types"
	"tokenvest/crypto"
	"tokenvest/native/token"
	"tokenvest/native/vesting"
	"tokenvest/observability/logging"
	"tokenvest/rpc"
	"tokenvest/storage"
)

// logEmitter forwards engine events to the structured logger.
type logEmitter struct {
	logger *slog.Logger
}

func (l logEmitter) Emit(event events.Event) {
	payload, ok := event.(interface{ Event() *coretypes.Event })
	if !ok {
		l.logger.Info("ledger event", "type", event.EventType())
		return
	}
	evt := payload.Event()
	attrs := make([]any, 0, 2+2*len(evt.Attributes))
	attrs = append(attrs, "type", evt.Type)
	for k, v := range evt.Attributes {
		attrs = append(attrs, k, v)
	}
	l.logger.Info("ledger event", attrs...)
}

// tokenAddress derives a deterministic 20-byte address for the configured
// vested asset from its symbol.
func tokenAddress(symbol string) [20]byte {
	var addr [20]byte
	copy(addr[:], ethcrypto.Keccak256([]byte("tokenvest/token/" + symbol))[12:])
	return addr
}

func main() {
	configPath := flag.String("config", "./config.toml", "path to the service configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup("vestd", cfg.Environment)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	manager := state.NewManager(db)
	ledger := token.NewLedger(manager)

	admin := crypto.MustDecodeAddress(cfg.AdminAddress)
	var adminAddr [20]byte
	copy(adminAddr[:], admin.Bytes())
	if err := manager.GrantRole(vesting.RoleAdmin, adminAddr[:]); err != nil {
		logger.Error("failed to grant admin role", "error", err)
		os.Exit(1)
	}

	engine := vesting.NewEngine()
	engine.SetState(manager)
	engine.SetLedger(ledger)
	engine.SetPauses(manager)
	engine.SetEmitter(logEmitter{logger: logger})

	assetAddr := tokenAddress(cfg.Token.Symbol)
	if _, err := ledger.Token(assetAddr); err != nil {
		if !errors.Is(err, token.ErrTokenNotFound) {
			logger.Error("failed to query token metadata", "error", err)
			os.Exit(1)
		}
		if err := ledger.Register(assetAddr, cfg.Token.Symbol, cfg.Token.Name, cfg.Token.Decimals, adminAddr); err != nil {
			logger.Error("failed to register vested asset", "error", err)
			os.Exit(1)
		}
		if err := ledger.Mint(adminAddr, assetAddr, vesting.VaultAddress(), cfg.SupplyAmount()); err != nil {
			logger.Error("failed to mint supply to vault", "error", err)
			os.Exit(1)
		}
		logger.Info("registered vested asset",
			"symbol", cfg.Token.Symbol,
			"supply", cfg.Token.Supply,
		)
	}
	if err := engine.BindAssetToken(adminAddr, assetAddr); err != nil && !errors.Is(err, vesting.ErrAssetAlreadyBound) {
		logger.Error("failed to bind vested asset", "error", err)
		os.Exit(1)
	}

	server := rpc.NewServer(engine, ledger, logger)
	logger.Info("vestd starting",
		"network", cfg.NetworkName,
		"rpc", cfg.RPCAddress,
		"dataDir", cfg.DataDir,
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
