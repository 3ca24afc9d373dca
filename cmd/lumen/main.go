package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lumen-gallery/lumen/internal/accounts"
	"github.com/lumen-gallery/lumen/internal/assetstore"
	"github.com/lumen-gallery/lumen/internal/config"
	"github.com/lumen-gallery/lumen/internal/favorites"
	"github.com/lumen-gallery/lumen/internal/imagecache"
	"github.com/lumen-gallery/lumen/internal/logging"
	"github.com/lumen-gallery/lumen/internal/profile"
	"github.com/lumen-gallery/lumen/internal/search"
	"github.com/lumen-gallery/lumen/internal/secrets"
	"github.com/lumen-gallery/lumen/internal/service"
	"github.com/lumen-gallery/lumen/internal/unsplash"
)

// Version is set at build time via -ldflags
var Version = "dev"

// app owns the wired components for one CLI invocation. Stores come up
// first, then the index and session that depend on them.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	secrets  *secrets.FileStore
	profiles *profile.Store
	index    *favorites.Index
	session  *search.Session
	gallery  *service.Gallery
	accounts *accounts.Manager
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting lumen", "version", Version)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	secretStore := secrets.NewFileStore(cfg.Storage.SecretsDir, logger)

	profiles, err := profile.NewStore(filepath.Join(cfg.Storage.DataDir, "profile.db"), logger)
	if err != nil {
		return nil, err
	}

	cache := imagecache.New(cfg.Storage.CacheDir, cfg.Storage.CacheMaxEntries, logger)
	assets := assetstore.New(cfg.Storage.FavoritesDir, logger)

	index, err := favorites.NewIndex(filepath.Join(cfg.Storage.DataDir, "favorites.db"), logger)
	if err != nil {
		profiles.Close()
		return nil, err
	}

	client := unsplash.NewClient(cfg.API.BaseURL, logger)
	session := search.NewSession(client, secretStore, cfg.API.CredentialKey, logger,
		search.WithPerPage(cfg.API.PageSize),
		search.WithRecorder(profiles),
	)
	gallery := service.NewGallery(cache, assets, profiles, index, client, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		secrets:  secretStore,
		profiles: profiles,
		index:    index,
		session:  session,
		gallery:  gallery,
		accounts: accounts.NewManager(profiles, secretStore, logger),
	}, nil
}

func (a *app) close() {
	a.index.Close()
	a.profiles.Close()
}

// requireUser resolves the --user flag to a known account.
func (a *app) requireUser(username string) error {
	if username == "" {
		return fmt.Errorf("--user is required")
	}
	if !a.accounts.Exists(username) {
		return fmt.Errorf("unknown user %q (run 'lumen signup' first)", username)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lumen",
		Short:         "Image gallery client: search, cache, and favorite photos",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignupCmd(),
		newLoginCmd(),
		newChangePasswordCmd(),
		newDeleteAccountCmd(),
		newUsersCmd(),
		newSetKeyCmd(),
		newSearchCmd(),
		newHistoryCmd(),
		newFavoritesCmd(),
		newFavoriteCmd(),
		newInitConfigCmd(),
	)
	return root
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Println("Config file written")
			return nil
		},
	}
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			names, err := a.profiles.Usernames()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No accounts")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newChangePasswordCmd() *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "change-password <username>",
		Short: "Change an account password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.accounts.ChangePassword(args[0], oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Println("Password changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	cmd.MarkFlagRequired("old")
	cmd.MarkFlagRequired("new")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.accounts.SignUp(args[0], email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Account created for %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Verify account credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.accounts.Login(args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome back, %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newDeleteAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-account <username>",
		Short: "Delete an account and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.accounts.Delete(args[0])
		},
	}
	return cmd
}

func newSetKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the search API credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if !a.secrets.Save(a.cfg.API.CredentialKey, args[0]) {
				return fmt.Errorf("failed to store api credential")
			}
			fmt.Println("API credential stored")
			return nil
		},
	}
	return cmd
}

func newSearchCmd() *cobra.Command {
	var username string
	var pages int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireUser(username); err != nil {
				return err
			}

			query := joinArgs(args)
			a.session.Search(cmd.Context(), query, username)
			for p := 1; p < pages; p++ {
				a.session.LoadMore(cmd.Context())
			}

			results := a.session.Results()
			if len(results) == 0 {
				fmt.Println("No results (is the API credential set? try 'lumen set-key')")
				return nil
			}
			for i, img := range results {
				fmt.Printf("%3d  %-12s %-40.40s  by %s\n", i, img.ID, img.DisplayTitle(), img.Author.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "account username")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireUser(username); err != nil {
				return err
			}

			recs, err := a.profiles.SearchRecordsFor(username)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No search history")
				return nil
			}
			for _, rec := range recs {
				fmt.Printf("%s  %s\n", rec.SearchedAt.Format("2006-01-02 15:04"), rec.Query)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "account username")
	return cmd
}

func newFavoritesCmd() *cobra.Command {
	var username, filter string
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorited photos",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireUser(username); err != nil {
				return err
			}

			if filter != "" {
				ff := search.NewFavoritesFilter()
				ff.Index(a.index.FavoritesFor(username))
				matches := ff.Match(filter)
				if len(matches) == 0 {
					fmt.Println("No matching favorites")
					return nil
				}
				for _, m := range matches {
					fmt.Printf("%-12s %-40.40s  by %s\n", m.Image.ID, m.Image.DisplayTitle(), m.Image.Author.Name)
				}
				return nil
			}

			recs, err := a.gallery.Favorites(username)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No favorites yet")
				return nil
			}
			for _, rec := range recs {
				fmt.Printf("%-12s %-40.40s  by %s\n", rec.ImageID, rec.Description, rec.PhotographerName)
			}
			fmt.Printf("\n%d favorites, %d KB on disk\n", len(recs), a.gallery.FavoritesSize()/1024)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "account username")
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy-filter favorites by caption or photographer")
	return cmd
}

func newFavoriteCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "favorite <query> <result-index>",
		Short: "Toggle a search result as a favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireUser(username); err != nil {
				return err
			}

			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("result index must be a number: %w", err)
			}

			a.session.Search(cmd.Context(), args[0], username)
			results := a.session.Results()
			if idx < 0 || idx >= len(results) {
				return fmt.Errorf("result index %d out of range (%d results)", idx, len(results))
			}

			img := results[idx]
			nowFav, err := a.gallery.ToggleFavorite(cmd.Context(), img, username)
			if err != nil {
				return err
			}
			if nowFav {
				fmt.Printf("Favorited %s\n", img.ID)
			} else {
				fmt.Printf("Removed favorite %s\n", img.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "account username")
	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
