package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdHelp        CommandType = "help"
	CmdSetCalendar CommandType = "setcalendar"
	CmdSetLocation CommandType = "setlocation"
	CmdToday       CommandType = "today"
	CmdMorningOn   CommandType = "on"
	CmdMorningOff  CommandType = "off"
	CmdStatus      CommandType = "status"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw: text,
	}

	switch parts[0] {
	case "setcalendar":
		cmd.Type = CmdSetCalendar
		if len(parts) > 1 {
			cmd.Args = parts[1:]
		}
	case "setlocation":
		cmd.Type = CmdSetLocation
		if len(parts) > 1 {
			cmd.Args = parts[1:]
		}
	case "today":
		cmd.Type = CmdToday
	case "on":
		cmd.Type = CmdMorningOn
		if len(parts) > 1 {
			cmd.Args = parts[1:]
		}
	case "off":
		cmd.Type = CmdMorningOff
	case "status":
		cmd.Type = CmdStatus
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

func GetHelpText() string {
	return `*Available commands:*

*Agenda:*
• ` + "`/morny today`" + ` - Show today's events and weather

*Setup:*
• ` + "`/morny setcalendar <calendar_id>`" + ` - Register calendars to read (comma-separated for several)
• ` + "`/morny setlocation <place or lat,lon>`" + ` - Register the weather location (e.g. 36.08,140.11)

*Morning notifications:*
• ` + "`/morny on [HH:MM]`" + ` - Enable the morning notification in this channel (default 07:30)
• ` + "`/morny off`" + ` - Disable the morning notification

*Other:*
• ` + "`/morny status`" + ` - Show your current settings
• ` + "`/morny help`" + ` - Show this help`
}
