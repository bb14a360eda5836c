package discord

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Ferroin/roll35/internal/domain/treasure"
	rollerr "github.com/Ferroin/roll35/internal/errors"
	"github.com/Ferroin/roll35/internal/services"
)

// interactionTimeout bounds one slash-command handling, comfortably
// above the catalog gate timeout
const interactionTimeout = 10 * time.Second

// Handler translates slash commands into roll requests and replies
// with plain text. Rendering beyond the raw item line is out of scope
// here; richer formatting belongs to a dedicated renderer.
type Handler struct {
	ServiceProvider *services.Provider
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{ServiceProvider: cfg.ServiceProvider}
}

// Commands returns the slash commands this handler serves
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "roll35",
			Description: "Roll random Pathfinder treasure",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "item",
					Description: "Roll one or more magic items",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "category", Description: "Item category (armor, weapon, wondrous, ...)"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "rank", Description: "minor, medium, or major"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "subrank", Description: "least, lesser, or greater"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "slot", Description: "Wondrous body slot"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "class", Description: "Casting class for potions, scrolls, wands"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "base", Description: "Base armor or weapon name"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "How many items to roll"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "spell",
					Description: "Roll a random spell",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "class", Description: "Casting class, or minimum/spellpage_arcane/spellpage_divine"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "level", Description: "Spell level for that class"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "tag", Description: "Required spell tag"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Show this channel's recent rolls",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "How many rolls to show"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List known categories, slots, classes, or tags",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "what",
							Description: "What to list",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "categories", Value: "categories"},
								{Name: "slots", Value: "slots"},
								{Name: "classes", Value: "classes"},
								{Name: "tags", Value: "tags"},
							},
						},
					},
				},
			},
		},
	}
}

// RegisterCommands registers the slash commands with Discord. An empty
// guildID registers globally.
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range h.Commands() {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

// HandleInteraction dispatches one interaction
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != "roll35" || len(data.Options) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	sub := data.Options[0]
	var reply string
	switch sub.Name {
	case "item":
		reply = h.handleItem(ctx, i.ChannelID, sub.Options)
	case "spell":
		reply = h.handleSpell(ctx, sub.Options)
	case "history":
		reply = h.handleHistory(ctx, i.ChannelID, sub.Options)
	case "list":
		reply = h.handleList(ctx, sub.Options)
	default:
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	})
	if err != nil {
		log.Printf("failed to respond to interaction: %v", err)
	}
}

func (h *Handler) handleItem(ctx context.Context, channelID string, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	req := treasure.RollRequest{}
	count := 1
	for _, opt := range opts {
		switch opt.Name {
		case "category":
			req.Category = strings.ToLower(opt.StringValue())
		case "rank":
			req.Rank = treasure.Rank(strings.ToLower(opt.StringValue()))
		case "subrank":
			req.Subrank = treasure.Subrank(strings.ToLower(opt.StringValue()))
		case "slot":
			req.Slot = strings.ToLower(opt.StringValue())
		case "class":
			req.Class = strings.ToLower(opt.StringValue())
		case "base":
			req.Base = opt.StringValue()
		case "count":
			count = int(opt.IntValue())
		}
	}

	items, err := h.ServiceProvider.RollService.RollMany(ctx, channelID, req, count)
	if err != nil {
		return renderError(err)
	}

	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = renderItem(item)
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) handleSpell(ctx context.Context, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	var (
		class string
		level *int
		tags  []string
	)
	for _, opt := range opts {
		switch opt.Name {
		case "class":
			class = strings.ToLower(opt.StringValue())
		case "level":
			l := int(opt.IntValue())
			level = &l
		case "tag":
			tags = append(tags, strings.ToLower(opt.StringValue()))
		}
	}

	res, err := h.ServiceProvider.SpellService.Random(ctx, class, level, tags)
	if err != nil {
		return renderError(err)
	}
	return fmt.Sprintf("%s (%s %d, CL %d)", res.Spell.Name, res.Class, res.Level, res.CasterLevel)
}

func (h *Handler) handleHistory(ctx context.Context, channelID string, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	count := 10
	for _, opt := range opts {
		if opt.Name == "count" {
			count = int(opt.IntValue())
		}
	}

	records, err := h.ServiceProvider.RollService.Recent(ctx, channelID, count)
	if err != nil {
		return renderError(err)
	}
	if len(records) == 0 {
		return "No rolls recorded for this channel yet."
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = fmt.Sprintf("%s — %s gp", rec.Name, formatCost(rec.Cost))
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) handleList(ctx context.Context, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	what := ""
	for _, opt := range opts {
		if opt.Name == "what" {
			what = opt.StringValue()
		}
	}

	var (
		values []string
		err    error
	)
	svc := h.ServiceProvider.RollService
	switch what {
	case "categories":
		values, err = svc.ListCategories(ctx)
	case "slots":
		values, err = svc.ListSlots(ctx)
	case "classes":
		values, err = svc.ListClasses(ctx)
	case "tags":
		values, err = svc.ListTags(ctx)
	default:
		return "I can list categories, slots, classes, or tags."
	}
	if err != nil {
		return renderError(err)
	}
	return strings.Join(values, ", ")
}

func renderItem(item *treasure.RolledItem) string {
	return fmt.Sprintf("%s — %s gp", item.Name, formatCost(item.Cost))
}

func formatCost(cost float64) string {
	return strconv.FormatFloat(cost, 'f', -1, 64)
}

// renderError maps the outcome taxonomy onto user-facing text
func renderError(err error) string {
	switch rollerr.GetCode(err) {
	case rollerr.CodeNotReady:
		return "The treasure tables are still loading, try again in a moment."
	case rollerr.CodeNoMatch:
		msg := "Nothing matches that request."
		if meta := rollerr.GetMeta(err); meta != nil {
			if suggestions, ok := meta["suggestions"].([]string); ok && len(suggestions) > 0 {
				msg += " Did you mean: " + strings.Join(suggestions, ", ") + "?"
			}
		}
		return msg
	case rollerr.CodeInvalid:
		return "That request does not make sense: " + err.Error()
	case rollerr.CodeLimited:
		return "I gave up on that one, the dice would not cooperate. Try again?"
	default:
		log.Printf("roll failed: %v", err)
		return "Something went wrong rolling that item."
	}
}
