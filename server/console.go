package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const consoleHelp = `commands:
  players                list seated players
  transferhost <id|-1>   give the host role to a player, -1 removes it
  kick <id>              disconnect a player
  ban <id>               ban a player's address and name, then disconnect
  unban <name>           remove a name from the ban list
  roomname <name>        rename the room
  password [secret]      set the room password, no argument clears it
  savechatlog            write the buffered chat log to disk
  close [minutes]        stop admissions and shut down when empty or after the deadline
  abortclose             cancel a scheduled close
  exit                   shut the server down
  help                   show this text`

// RunConsole reads admin commands from r until ctx is cancelled or r hits
// EOF. It always returns nil so a closed stdin does not tear the server down.
func (s *Server) RunConsole(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			s.runCommand(strings.TrimSpace(line), w)
		}
	}
}

func (s *Server) runCommand(line string, w io.Writer) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(w, consoleHelp)

	case "players":
		players := s.ListPlayers()
		if len(players) == 0 {
			fmt.Fprintln(w, "no players")
			return
		}
		for _, p := range players {
			host := ""
			if p.Host {
				host = " (host)"
			}
			fmt.Fprintf(w, "%3d  %s  level %s  team %d%s\n", p.ID, p.Name, p.Level, p.Team, host)
		}

	case "transferhost":
		id, ok := consoleID(w, args, "transferhost <id|-1>")
		if !ok {
			return
		}
		if err := s.TransferHost(id); err != nil {
			fmt.Fprintln(w, err)
			return
		}
		fmt.Fprintln(w, "host transferred")

	case "kick":
		id, ok := consoleID(w, args, "kick <id>")
		if !ok {
			return
		}
		if err := s.KickPlayer(id); err != nil {
			fmt.Fprintln(w, err)
			return
		}
		fmt.Fprintln(w, "kicked")

	case "ban":
		id, ok := consoleID(w, args, "ban <id>")
		if !ok {
			return
		}
		if err := s.BanPlayer(id); err != nil {
			fmt.Fprintln(w, err)
			return
		}
		fmt.Fprintln(w, "banned")

	case "unban":
		if len(args) != 1 {
			fmt.Fprintln(w, "usage: unban <name>")
			return
		}
		removed, err := s.Unban(args[0])
		if err != nil {
			fmt.Fprintln(w, err)
			return
		}
		if !removed {
			fmt.Fprintln(w, "no such ban")
			return
		}
		fmt.Fprintln(w, "unbanned")

	case "roomname":
		if len(args) == 0 {
			fmt.Fprintln(w, "usage: roomname <name>")
			return
		}
		s.SetRoomName(strings.Join(args, " "))
		fmt.Fprintln(w, "room renamed")

	case "password":
		s.SetPassword(strings.Join(args, " "))
		if len(args) == 0 {
			fmt.Fprintln(w, "password cleared")
		} else {
			fmt.Fprintln(w, "password set")
		}

	case "savechatlog":
		path, err := s.SaveChatLog()
		if err != nil {
			fmt.Fprintln(w, err)
			return
		}
		if path == "" {
			fmt.Fprintln(w, "chat log empty, nothing written")
			return
		}
		fmt.Fprintln(w, "chat log written to "+path)

	case "close":
		minutes := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				fmt.Fprintln(w, "usage: close [minutes]")
				return
			}
			minutes = n
		}
		s.ScheduledClose(minutes)
		if minutes > 0 {
			fmt.Fprintf(w, "room closing, hard deadline in %d minutes\n", minutes)
		} else {
			fmt.Fprintln(w, "room closing once empty")
		}

	case "abortclose":
		s.AbortScheduledClose()
		fmt.Fprintln(w, "close aborted")

	case "exit":
		fmt.Fprintln(w, "shutting down")
		s.signalDone()

	default:
		fmt.Fprintf(w, "unknown command %q, try help\n", cmd)
	}
}

func consoleID(w io.Writer, args []string, usage string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(w, "usage: "+usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(w, "usage: "+usage)
		return 0, false
	}
	return id, true
}
