// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes the local cache database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage drive authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Google Drive using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Revoke the drive token and wipe the local cache",
				Action: r.Logout,
			},
		},
	}
}

// syncCommand reconciles the local cache against the remote library index.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Reconcile the local cache against the remote library",
		Action: r.Sync,
	}
}

// songCommand handles song operations
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "song",
		Usage: "Song operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached songs, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SongList,
			},
			{
				Name:  "hydrate",
				Usage: "Download a song's audio (and art, lyrics) into the cache",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongHydrate,
			},
			{
				Name:  "upload",
				Usage: "Upload an mp3 file into the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Path to cover art image",
					},
				},
				Action: r.SongUpload,
			},
			{
				Name:  "edit",
				Usage: "Update a song's title, artist or album",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "artist", Usage: "New artist"},
					&cli.StringFlag{Name: "album", Usage: "New album"},
				},
				Action: r.SongEdit,
			},
			{
				Name:  "delete",
				Usage: "Delete a song from the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SongDelete,
			},
			{
				Name:  "lyrics",
				Usage: "Show, search or replace a song's synced lyrics",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "search",
						Usage: "Search the public lyric catalog and save the best match",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path to an .lrc file to save as the song's lyrics",
					},
				},
				Action: r.SongLyrics,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "create",
				Usage: "Create a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add",
				Usage: "Add a song to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song ID",
						Required: true,
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song ID",
						Required: true,
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist (songs are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistDelete,
			},
		},
	}
}
