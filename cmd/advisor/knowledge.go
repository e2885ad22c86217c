package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

var (
	addScope  string
	addSource string

	searchScope string
	searchTopK  int
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the traveler's personal knowledge base",
	Long: `The knowledge base holds the traveler's own notes: saved articles,
trip journals, recommendations. Planning runs retrieve from it for dining
and local-tip suggestions, and cite the passages they use.`,
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Ingest a text or markdown file as knowledge passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeAdd,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search \"<query>\"",
	Short: "Search stored passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeSearch,
}

func init() {
	knowledgeAddCmd.Flags().StringVar(&addScope, "destination", "", "restrict the passages to one destination")
	knowledgeAddCmd.Flags().StringVar(&addSource, "source", "file", "source kind recorded on the passages")
	knowledgeSearchCmd.Flags().StringVar(&searchScope, "destination", "", "restrict the search to one destination")
	knowledgeSearchCmd.Flags().IntVar(&searchTopK, "top-k", 5, "maximum results")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	store, err := openKnowledgeStore()
	if err != nil {
		return err
	}
	defer store.Close()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	chunks := splitChunks(string(data))
	if len(chunks) == 0 {
		return fmt.Errorf("%s contains no text", path)
	}

	now := time.Now()
	for i, chunk := range chunks {
		passage := knowledge.Passage{
			ID:               string(types.NewID()),
			Title:            title,
			Source:           addSource,
			DestinationScope: addScope,
			Text:             chunk,
			ChunkIdx:         i,
			CreatedAt:        now,
		}
		if err := store.Add(cmd.Context(), passage); err != nil {
			return err
		}
	}

	cmd.Printf("Added %d passage(s) from %s\n", len(chunks), path)
	return nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	store, err := openKnowledgeStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), args[0], knowledge.SearchOptions{
		DestinationScope: searchScope,
		TopK:             searchTopK,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		cmd.Println("No matching passages.")
		return nil
	}

	for _, r := range results {
		cmd.Printf("%.3f  [%s] %s\n      %s\n", r.Score, r.Passage.ID, r.Passage.Title, firstLine(r.Passage.Text))
	}
	return nil
}

// splitChunks breaks a document on blank lines into passage-sized chunks.
func splitChunks(text string) []string {
	var chunks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			chunks = append(chunks, block)
		}
	}
	return chunks
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 120 {
		text = text[:120] + "…"
	}
	return text
}
