package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
	"github.com/xolan/haven/internal/community"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your community profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ShowProfile(cmd.Context(), cli.GetDeps())
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update your community profile",
	Long: `Create or update the profile other members see next to your posts.

Only the flags you pass are changed; --interest and --support replace the
whole list.

Examples:
  haven profile set --name Ada --bio 'Learning to slow down'
  haven profile set --interest mindfulness --interest running
  haven profile set --visible=false`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		deps := cli.GetDeps()
		p, err := deps.Services.Community.MyProfile(cmd.Context())
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			deps.Exit(1)
			return
		}
		profile := community.Profile{Visible: true}
		if p != nil {
			profile = *p
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			profile.DisplayName, _ = flags.GetString("name")
		}
		if flags.Changed("bio") {
			profile.Bio, _ = flags.GetString("bio")
		}
		if flags.Changed("interest") {
			profile.Interests, _ = flags.GetStringSlice("interest")
		}
		if flags.Changed("support") {
			profile.SupportPreferences, _ = flags.GetStringSlice("support")
		}
		if flags.Changed("visible") {
			profile.Visible, _ = flags.GetBool("visible")
		}
		handlers.SaveProfile(cmd.Context(), deps, profile)
	},
}

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Share a post with the community",
	Long: `Share a post with the community. Requires a profile.

Moods: celebrating, struggling, reflecting, grateful, seeking_support

Examples:
  haven post 'Ran my first 5k today' --mood celebrating
  haven post 'Rough week, any tips for sleeping better?' --mood seeking_support --tag sleep`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		moodStr, _ := cmd.Flags().GetString("mood")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		handlers.CreatePost(cmd.Context(), cli.GetDeps(), strings.Join(args, " "), moodStr, tags)
	},
}

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Read the community feed",
	Long: `Read the newest community posts. Post numbers are used by like, comment and comments.

Examples:
  haven feed
  haven feed --limit 5
  haven like 2
  haven comment 2 'Sending good thoughts'`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		handlers.ShowFeed(cmd.Context(), cli.GetDeps(), limit)
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <index>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ToggleLike(cmd.Context(), cli.GetDeps(), args[0])
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <index> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		handlers.AddComment(cmd.Context(), cli.GetDeps(), args[0], strings.Join(args[1:], " "))
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <index>",
	Short: "Read the comments on a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ShowComments(cmd.Context(), cli.GetDeps(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(profileCmd, postCmd, feedCmd, likeCmd, commentCmd, commentsCmd)
	profileCmd.AddCommand(profileSetCmd)

	profileSetCmd.Flags().String("name", "", "Display name")
	profileSetCmd.Flags().String("bio", "", "Short bio")
	profileSetCmd.Flags().StringSlice("interest", nil, "Interest (repeatable)")
	profileSetCmd.Flags().StringSlice("support", nil, "Kind of support you welcome (repeatable)")
	profileSetCmd.Flags().Bool("visible", true, "Show your profile to other members")

	postCmd.Flags().StringP("mood", "m", "", "How you feel about this post")
	postCmd.Flags().StringSliceP("tag", "t", nil, "Tag the post (repeatable)")
	feedCmd.Flags().IntP("limit", "l", 20, "Maximum number of posts to show")
}
