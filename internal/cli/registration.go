package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ownerSecret returns the secret from --secret or, failing that, the local
// credentials file
func ownerSecret(id, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return credentials.Secret(id)
}

// explain adds context to errors whose cause a user would otherwise confuse
func explain(err error) error {
	switch {
	case errors.Is(err, ErrNoLocalSecret):
		return fmt.Errorf("%w (pass --secret if you saved it elsewhere)", err)
	case IsAPIError(err, "UNAUTHORIZED"):
		return fmt.Errorf("secret rejected by server: %w", err)
	default:
		return err
	}
}

func newRegisterCmd() *cobra.Command {
	var factionName, name, team, character string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a player into a faction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := CreateRegistration{Faction: factionName, PlayerName: name}
			if cmd.Flags().Changed("team") {
				body.TeamName = &team
			}
			if cmd.Flags().Changed("character") {
				body.CharacterUUID = &character
			}

			result, err := client.CreateRegistration(body)
			if err != nil {
				return err
			}

			if err := credentials.Save(result.ID, Credential{
				Secret:     result.OwnerSecret,
				PlayerName: result.PlayerName,
				Faction:    result.Faction,
				SavedAt:    time.Now().UTC(),
			}); err != nil {
				return fmt.Errorf("registered %s but failed to save its secret: %w", result.ID, err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&factionName, "faction", "", "Faction: efemeros or rosetta (required)")
	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team name")
	cmd.Flags().StringVar(&character, "character", "", "Character id")
	_ = cmd.MarkFlagRequired("faction")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [faction]",
		Short: "List registrations, optionally for one faction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var factionName string
			if len(args) == 1 {
				factionName = args[0]
			}

			result, err := client.ListRegistrations(factionName)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show each faction's ranked players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Leaderboard()
			if err != nil {
				return err
			}

			if top > 0 {
				for f, entries := range result {
					if len(entries) > top {
						result[f] = entries[:top]
					}
				}
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Show at most this many players per faction")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var secret, name, team, character, factionName string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a registration you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			body := map[string]any{}
			if cmd.Flags().Changed("name") {
				body["playerName"] = name
			}
			if cmd.Flags().Changed("team") {
				body["teamName"] = team
			}
			if cmd.Flags().Changed("character") {
				body["characterUuid"] = character
			}
			if cmd.Flags().Changed("faction") {
				body["faction"] = factionName
			}
			if len(body) == 0 {
				return errors.New("nothing to update: pass at least one of --name, --team, --character, --faction")
			}

			s, err := ownerSecret(id, secret)
			if err != nil {
				return explain(err)
			}

			result, err := client.UpdateRegistration(id, body, s)
			if err != nil {
				return explain(err)
			}

			_ = credentials.Update(id, func(c *Credential) {
				c.PlayerName = result.PlayerName
				c.Faction = result.Faction
			})

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Owner secret (defaults to the saved one)")
	cmd.Flags().StringVar(&name, "name", "", "New player name")
	cmd.Flags().StringVar(&team, "team", "", "New team name")
	cmd.Flags().StringVar(&character, "character", "", "New character id")
	cmd.Flags().StringVar(&factionName, "faction", "", "New faction")

	return cmd
}

func newTransferCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "transfer <id> <faction>",
		Short: "Move a registration you own to another faction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, factionName := args[0], args[1]

			s, err := ownerSecret(id, secret)
			if err != nil {
				return explain(err)
			}

			result, err := client.UpdateFaction(id, factionName, s)
			if err != nil {
				return explain(err)
			}

			_ = credentials.Update(id, func(c *Credential) { c.Faction = result.Faction })

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Owner secret (defaults to the saved one)")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a registration you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			s, err := ownerSecret(id, secret)
			if err != nil {
				return explain(err)
			}

			if err := client.DeleteRegistration(id, s); err != nil {
				return explain(err)
			}

			if err := credentials.Remove(id); err != nil {
				return fmt.Errorf("deleted %s but failed to forget its secret: %w", id, err)
			}

			output(cmd).PrintMessage(fmt.Sprintf("Registration %s deleted", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Owner secret (defaults to the saved one)")

	return cmd
}
