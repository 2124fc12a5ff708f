package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagestream/pagestream-cli/internal/postprocess/images"
)

var imagesCmd = &cobra.Command{
	Use:   "images [paths...]",
	Short: "Localise remote images referenced by converted files",
	Long: `Downloads the images that converted markdown files reference from
the conversion service CDN and rewrites the links to local relative
paths. Each argument is a converted file or a directory tree of them.
Links whose download fails are left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImages,
}

func init() {
	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := images.NewProcessor(nil)

	var total images.Result
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}

		var res images.Result
		if info.IsDir() {
			res, err = processor.ProcessTree(ctx, arg)
		} else {
			res, err = processor.ProcessFile(ctx, arg)
		}
		total.Rewritten += res.Rewritten
		total.Failed += res.Failed
		if err != nil {
			return err
		}
	}

	cmd.Printf("Localised %d images", total.Rewritten)
	if total.Failed > 0 {
		cmd.Printf(" (%d failed)", total.Failed)
	}
	cmd.Println()

	if total.Failed > 0 {
		return fmt.Errorf("%d downloads failed", total.Failed)
	}
	return nil
}
