// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/jetsetilly/retrace/modalflag"
	"github.com/jetsetilly/retrace/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// reset interrupt signal handling. used when the mode provides its own
	// handler so that the video pipeline can be shut down cleanly.
	//
	// takes no arguments.
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// communication between the main() function and the launch() function. this
// is required because SDL and OpenGL require window handling and drawing to
// happen on the main thread.
type mainSync struct {
	state chan stateRequest

	// functions sent to the run channel are called on the main thread. the
	// result is returned on the runResult channel
	run       chan func() error
	runResult chan error
}

// #mainthread
func main() {
	sync := &mainSync{
		state:     make(chan stateRequest),
		run:       make(chan func() error),
		runResult: make(chan error),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	// #ctrlc default handler. can be turned off with reqNoIntSig request
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// launch program as a go routine. further communication is through
	// the mainSync instance
	go launch(sync, os.Args[1:])

	done := false
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true

		case fn := <-sync.run:
			sync.runResult <- fn()

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqNoIntSig:
				signal.Stop(intChan)
				if state.args != nil {
					panic(fmt.Sprintf("%s does not accept any arguments", reqNoIntSig))
				}
			}
		}
	}

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// run functions on the main thread and to quit.
func launch(sync *mainSync, args []string) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("PLAY", "HEADLESS", "VERSION")
	md.AdditionalHelp("PLAY opens a window. HEADLESS presents frames to a recording device.")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	if md.Mode() == "VERSION" {
		v, r, _ := version.Version()
		fmt.Printf("%s %s (%s)\n", version.ApplicationName, v, r)
		sync.state <- stateRequest{req: reqQuit}
		return
	}

	// both remaining modes handle the interrupt signal by fading out and
	// exiting
	sync.state <- stateRequest{req: reqNoIntSig}

	switch md.Mode() {
	case "PLAY":
		err = play(md, sync)

	case "HEADLESS":
		err = headless(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}
