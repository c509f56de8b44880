package game

import (
	"strings"
)

// runCommand parses and executes an operator chat command. The first
// whitespace-delimited token is the command name, the remainder its
// argument. Misuse is reported back to the issuing operator as a chat
// message, never fatal.
func (g *Game) runCommand(operator *Player, text string) {
	command, rest, _ := strings.Cut(text, " ")

	switch command {
	case "*lookup":
		needle := strings.ToLower(rest)
		g.players.ForEach(func(other *Player) {
			if strings.Contains(strings.ToLower(other.Name), needle) {
				operator.Send(systemChat(other.Name + " = " + other.ID))
			}
		})

	case "*ban":
		target := g.players.FindByID(rest)
		if target == nil {
			operator.Send(systemChat("No player found with id " + rest))
			return
		}
		target.Banned = true
		target.Send(systemChat("You have been banned from the game. Please contact an administrator if you believe the ban was made in error."))
		operator.Send(systemChat("Player " + target.Name + " (" + target.ID + ") banned."))
		g.playerLeft(target)

	case "*unban":
		id := rest
		go func() {
			err := Unban(g.store, id)
			g.post(func() {
				if !g.players.Contains(operator) {
					return
				}
				if err != nil {
					operator.Send(systemChat("Unable to unban player."))
				} else {
					operator.Send(systemChat("Player successfully unbanned."))
				}
			})
		}()

	case "*msg":
		g.players.BroadcastAll(systemChat(rest))

	case "*restart":
		if g.lameduck {
			operator.Send(systemChat("Server is already in lameduck mode."))
			return
		}
		if g.hooks.Restart != nil {
			g.hooks.Restart()
		}
		g.lameduck = true
		operator.Send(systemChat("Forked a new server and entered lameduck mode."))

	case "*shutdown":
		g.shutdown()

	default:
		operator.Send(systemChat("Invalid command: " + command + ". Try *ban <id>, *unban <id>, *lookup <name> or *msg <message>."))
	}
}
