package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/auth"
	"github.com/ganliai/insight/pkg/config"
	"github.com/ganliai/insight/pkg/eventbus"
	"github.com/ganliai/insight/pkg/model"
	"github.com/ganliai/insight/pkg/quota"
	"github.com/ganliai/insight/pkg/store/postgres"
	redisclient "github.com/ganliai/insight/pkg/store/redis"
	"github.com/ganliai/insight/pkg/task"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "insightctl",
		Short:        "Operations CLI for the insight backend",
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(tenantCmd())
	root.AddCommand(quotaCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore() (*postgres.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AutoMigrate(); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func tenantCmd() *cobra.Command {
	tenant := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	var ownerOpenID string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tenant with its owner and a free-tier subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()

			owner := &model.User{
				OpenID: ownerOpenID,
				Role:   model.RoleAdmin,
			}
			if err := db.DB().WithContext(ctx).Create(owner).Error; err != nil {
				return fmt.Errorf("create owner: %w", err)
			}

			created, err := postgres.NewTenantRepository(db.DB()).Create(ctx, args[0], owner.ID)
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			fmt.Printf("tenant %s created (uuid=%s owner_id=%d free_quota=%d)\n",
				created.Name, created.UUID, owner.ID, postgres.FreePlanQuota)
			return nil
		},
	}
	create.Flags().StringVar(&ownerOpenID, "owner-open-id", "", "External identity of the tenant owner")
	create.MarkFlagRequired("owner-open-id")

	tenant.AddCommand(create)
	return tenant
}

func quotaCmd() *cobra.Command {
	quotaRoot := &cobra.Command{
		Use:   "quota",
		Short: "Inspect and adjust tenant quotas",
	}

	var amount int
	var userID uint
	recharge := &cobra.Command{
		Use:   "recharge <tenant-uuid>",
		Short: "Add analysis credits to a tenant's active subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("amount must be positive, got %d", amount)
			}

			tenantUUID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant uuid %q: %w", args[0], err)
			}

			db, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()

			tenant, err := postgres.NewTenantRepository(db.DB()).GetByUUID(ctx, tenantUUID)
			if err != nil {
				return fmt.Errorf("lookup tenant: %w", err)
			}

			// Dashboards listen for quota.recharged, so route the credit
			// through the service. A missing redis only costs the event.
			var bus task.Publisher
			if redis, err := redisclient.NewClient(&cfg.Redis); err == nil {
				defer redis.Close()
				bus = eventbus.NewBus(redis.Client())
			} else {
				fmt.Fprintln(os.Stderr, "Warning: redis unreachable, recharge event not published:", err)
			}

			manager := quota.NewManager(db.DB())
			service := task.NewService(manager, nil, nil, nil, bus, zap.NewNop())
			if err := service.RechargeQuota(ctx, tenant.ID, userID, amount); err != nil {
				return fmt.Errorf("recharge: %w", err)
			}

			remaining, total, plan, err := manager.Remaining(ctx, tenant.ID)
			if err != nil {
				return fmt.Errorf("read balance: %w", err)
			}

			fmt.Printf("tenant %s recharged by %d (plan=%s remaining=%d/%d)\n",
				tenant.Name, amount, plan, remaining, total)
			return nil
		},
	}
	recharge.Flags().IntVar(&amount, "amount", 0, "Number of analysis credits to add")
	recharge.Flags().UintVar(&userID, "user-id", 0, "Operator user recorded in the quota log")
	recharge.MarkFlagRequired("amount")

	remaining := &cobra.Command{
		Use:   "remaining <tenant-uuid>",
		Short: "Show a tenant's remaining analysis credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantUUID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant uuid %q: %w", args[0], err)
			}

			db, _, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()

			tenant, err := postgres.NewTenantRepository(db.DB()).GetByUUID(ctx, tenantUUID)
			if err != nil {
				return fmt.Errorf("lookup tenant: %w", err)
			}

			remaining, total, plan, err := quota.NewManager(db.DB()).Remaining(ctx, tenant.ID)
			if err != nil {
				return fmt.Errorf("read balance: %w", err)
			}

			fmt.Printf("tenant %s plan=%s remaining=%d/%d\n", tenant.Name, plan, remaining, total)
			return nil
		},
	}

	quotaRoot.AddCommand(recharge)
	quotaRoot.AddCommand(remaining)
	return quotaRoot
}

func tokenCmd() *cobra.Command {
	var userID, tenantID uint
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
			token, err := tokens.Generate(userID, tenantID, subject)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 0, "User ID the token authenticates")
	cmd.Flags().UintVar(&tenantID, "tenant-id", 0, "Tenant the user acts in")
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagRequired("tenant-id")

	return cmd
}
