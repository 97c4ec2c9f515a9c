package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Name identifies a command by the word that triggers it.
type Name string

const (
	Help       Name = "help"
	Regenerate Name = "regenerate"
	Delete     Name = "delete"
	Publish    Name = "publish"
	Unpublish  Name = "unpublish"
	Add        Name = "add"
)

// Reaction emoji shown on post announcements.
const (
	EmojiDelete    = "❌"
	EmojiPublish   = "✅"
	EmojiUnpublish = "✏️"
)

// Permission levels.
const (
	LevelEveryone = "everyone"
	LevelAdmin    = "admin"
)

// Definition describes one command.
type Definition struct {
	Name        Name
	Reply       bool
	Description string
	Emoji       string
	Level       string
}

// Key returns the dispatch table key of the command.
func (d Definition) Key() Key {
	return Key{Reply: d.Reply, Name: d.Name}
}

// Definitions lists every command in help order.
var Definitions = []Definition{
	{Name: Publish, Reply: true, Emoji: EmojiPublish, Level: LevelEveryone,
		Description: "If the post is a draft, it will be published"},
	{Name: Unpublish, Reply: true, Emoji: EmojiUnpublish, Level: LevelEveryone,
		Description: "If the post is published, it will be converted to a draft and hidden from the site"},
	{Name: Delete, Reply: true, Emoji: EmojiDelete, Level: LevelEveryone,
		Description: "Deletes the post"},
	{Name: Add, Reply: true, Level: LevelEveryone,
		Description: "Adds all media attached to the message to the post"},
	{Name: Help, Level: LevelEveryone,
		Description: "shows this message"},
	{Name: Regenerate, Level: LevelAdmin,
		Description: "forces the website to refresh its contents"},
}

// Lookup returns the definition registered under key.
func Lookup(key Key) (Definition, bool) {
	for _, d := range Definitions {
		if d.Key() == key {
			return d, true
		}
	}
	return Definition{}, false
}

// ForEmoji returns the reply command triggered by reacting with emoji.
func ForEmoji(emoji string) (Name, bool) {
	for _, d := range Definitions {
		if d.Reply && d.Emoji != "" && d.Emoji == emoji {
			return d.Name, true
		}
	}
	return "", false
}

// HelpEnd closes the help message. Reactions on a bot message ending with it
// are treated as reactions on the help message.
var HelpEnd = fmt.Sprintf("Once you no longer need this help, close it with the %s below.", EmojiDelete)

// HelpText renders the help message for a site published at siteURL.
func HelpText(siteURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I will publish content you post here to <%s>\n\n", siteURL)
	b.WriteString("Usage:\n")
	b.WriteString(" - Just write a message and attach some media to post it.\n")
	b.WriteString(" - If you start your message with `draft:`, you will have a chance to look at the post before publishing it.\n")
	b.WriteString(" - If your message had a blank line in it, anything before the blank line will be the title, anything after will be added to the post contents.\n\n")
	b.WriteString("When I create posts, I will post a message in this chat with a link to them. ")
	b.WriteString("You can perform actions on the post by replying to the message with the following commands:\n")
	for _, d := range Definitions {
		if d.Reply {
			writeUsage(&b, d)
		}
	}
	b.WriteString("\nI also respond to the following commands:\n")
	for _, d := range Definitions {
		if !d.Reply {
			writeUsage(&b, d)
		}
	}
	b.WriteString("\n")
	b.WriteString(HelpEnd)
	return b.String()
}

func writeUsage(b *strings.Builder, d Definition) {
	if d.Emoji != "" {
		fmt.Fprintf(b, " - `%s` (%s): %s\n", d.Name, d.Emoji, d.Description)
		return
	}
	fmt.Fprintf(b, " - `%s`: %s\n", d.Name, d.Description)
}

// ApplicationCommands returns the slash command definitions of the
// standalone commands.
func ApplicationCommands() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, d := range Definitions {
		if d.Reply {
			continue
		}
		desc := d.Description
		if desc != "" {
			desc = strings.ToUpper(desc[:1]) + desc[1:]
		}
		defs = append(defs, &discordgo.ApplicationCommand{
			Name:        string(d.Name),
			Description: desc,
		})
	}
	return defs
}
