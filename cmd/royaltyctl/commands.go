package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libroyalty-go/config"
	"github.com/bitfsorg/libroyalty-go/royalty"
)

func parseUints(args []string) ([]uint64, error) {
	vals := make([]uint64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the resolved configuration to the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath(a.cfg.DataDir)
			if err := config.SaveConfig(path, a.cfg); err != nil {
				return err
			}
			fmt.Fprintln(a.out, path)
			return nil
		},
	}
}

func paramsCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "set-authority <principal>",
			Short: "Set the global authority (once)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.SetAuthority(a.call(), royalty.Principal(args[0]))
				})
			},
		},
		{
			Use:   "set-min-rate <basis-points>",
			Short: "Set the lower bound of the global rate band",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints(args)
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.SetMinRate(a.call(), v[0])
				})
			},
		},
		{
			Use:   "set-max-rate <basis-points>",
			Short: "Set the upper bound of the global rate band",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints(args)
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.SetMaxRate(a.call(), v[0])
				})
			},
		},
		{
			Use:   "set-payment-asset <asset>",
			Short: "Set the payment asset reference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.SetPaymentAsset(a.call(), args[0])
				})
			},
		},
		{
			Use:   "params",
			Short: "Print the global parameters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLedger(func(l *royalty.Ledger) error {
					p, err := l.Params()
					if err != nil {
						return err
					}
					return a.printJSON(p)
				})
			},
		},
	}
}

func agreementCommands(a *app) []*cobra.Command {
	var req royalty.CreateRequest
	var currency string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a royalty agreement owned by the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Currency = royalty.Currency(currency)
			return a.withLedger(func(l *royalty.Ledger) error {
				id, err := l.CreateRoyalty(a.call(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, id)
				return nil
			})
		},
	}
	create.Flags().Uint64Var(&req.AssetID, "asset", 0, "asset id (> 0)")
	create.Flags().Uint64Var(&req.Rate, "rate", 0, "royalty rate in basis points")
	create.Flags().Uint64Var(&req.Expiration, "expiration", 0, "expiration block height")
	create.Flags().StringVar(&currency, "currency", string(royalty.CurrencySTX), "currency (STX or CURA)")
	create.Flags().Uint64Var(&req.MinRate, "min-rate", 0, "per-agreement minimum rate")
	create.Flags().Uint64Var(&req.MaxRate, "max-rate", 0, "per-agreement maximum rate")

	return []*cobra.Command{
		create,
		{
			Use:   "update <id> <rate> <expiration>",
			Short: "Amend an agreement's rate and expiration",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints(args)
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.UpdateRoyalty(a.call(), v[0], v[1], v[2])
				})
			},
		},
		{
			Use:   "count",
			Short: "Print the number of agreements ever created",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withLedger(func(l *royalty.Ledger) error {
					n, err := l.RoyaltyCount()
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, n)
					return nil
				})
			},
		},
		{
			Use:   "show <id>",
			Short: "Print an agreement with its recipients, tiers and last update",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints(args)
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return a.show(l, v[0])
				})
			},
		},
	}
}

type agreementView struct {
	Agreement  *royalty.Agreement      `json:"agreement"`
	Recipients []royalty.RecipientSlot `json:"recipients"`
	Tiers      []royalty.TierSlot      `json:"tiers"`
	LastUpdate *royalty.UpdateRecord   `json:"lastUpdate,omitempty"`
}

func (a *app) show(l *royalty.Ledger, id uint64) error {
	agreement, err := l.Agreement(id)
	if err != nil {
		return err
	}
	recipients, err := l.Recipients(id)
	if err != nil {
		return err
	}
	tiers, err := l.Tiers(id)
	if err != nil {
		return err
	}
	view := agreementView{Agreement: agreement, Recipients: recipients, Tiers: tiers}
	if u, err := l.LastUpdate(id); err == nil {
		view.LastUpdate = u
	} else if royalty.KindOf(err) != royalty.KindNotFound {
		return err
	}
	return a.printJSON(view)
}

func registryCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "add-recipient <id> <recipient> <percentage> <slot>",
			Short: "Store a payout recipient in a slot of an agreement",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints([]string{args[0], args[2], args[3]})
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.AddRecipient(a.call(), v[0], royalty.Principal(args[1]), v[1], v[2])
				})
			},
		},
		{
			Use:   "add-tier <id> <tier> <threshold> <rate>",
			Short: "Store a threshold rate in a tier of an agreement",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseUints(args)
				if err != nil {
					return err
				}
				return a.withLedger(func(l *royalty.Ledger) error {
					return l.AddTier(a.call(), v[0], v[1], v[2], v[3])
				})
			},
		},
	}
}

func distributeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <id> <sale-amount>",
		Short: "Compute and emit the royalty payout for a sale",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseUints(args)
			if err != nil {
				return err
			}
			return a.withLedger(func(l *royalty.Ledger) error {
				amount, err := l.DistributeRoyalty(a.call(), v[0], v[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, amount)
				return nil
			})
		},
	}
}
