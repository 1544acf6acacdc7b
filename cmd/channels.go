package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/richinsley/shadercanvas"
	"github.com/richinsley/shadercanvas/api"
	"github.com/richinsley/shadercanvas/audio"
	"github.com/richinsley/shadercanvas/background"
	"github.com/richinsley/shadercanvas/inputs"
	"github.com/richinsley/shadercanvas/media"
	"github.com/richinsley/shadercanvas/options"
)

var videoExts = map[string]bool{".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true}
var audioExts = map[string]bool{".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true}

// channelFromFlag turns a -channelN value into a channel binding.
func channelFromFlag(index int, value string) (options.ChannelConfig, bool) {
	if value == "" {
		return options.ChannelConfig{}, false
	}
	cfg := options.ChannelConfig{Index: index, Path: value}
	ext := strings.ToLower(filepath.Ext(value))
	switch {
	case value == "mic":
		cfg.Kind, cfg.Path = "mic", ""
	case videoExts[ext]:
		cfg.Kind = "video"
	case audioExts[ext]:
		cfg.Kind = "audio"
	default:
		cfg.Kind = "image"
	}
	return cfg, true
}

// configSampler fills unset sampler fields of cfg from the default sampler.
func configSampler(cfg options.ChannelConfig) inputs.Sampler {
	s := inputs.DefaultSampler
	if cfg.Filter != "" {
		s.Filter = cfg.Filter
	}
	if cfg.Wrap != "" {
		s.Wrap = cfg.Wrap
	}
	s.VFlip = cfg.VFlip
	return s
}

// shadertoySampler converts a Shadertoy input sampler.
func shadertoySampler(in api.Sampler) inputs.Sampler {
	s := inputs.DefaultSampler
	if in.Filter != "" {
		s.Filter = in.Filter
	}
	if in.Wrap != "" {
		s.Wrap = in.Wrap
	}
	s.VFlip = in.VFlip == "true"
	return s
}

// channelConfigs merges settings channels with flag overrides.
func channelConfigs(settings *options.Settings, flags [4]string) []options.ChannelConfig {
	var byIndex [4]*options.ChannelConfig
	for i := range settings.Channels {
		c := settings.Channels[i]
		byIndex[c.Index] = &c
	}
	for i, v := range flags {
		if c, ok := channelFromFlag(i, v); ok {
			byIndex[i] = &c
		}
	}
	var out []options.ChannelConfig
	for _, c := range byIndex {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// loadChannels loads media off the render thread and hands it to ctrl.
func loadChannels(ctx context.Context, ctrl *background.Controller, configs []options.ChannelConfig) {
	log := shadercanvas.Logger()
	for _, cfg := range configs {
		go func(cfg options.ChannelConfig) {
			switch cfg.Kind {
			case "image":
				img, err := media.LoadImage(cfg.Path)
				if err != nil {
					log.Error("channel image failed", "channel", cfg.Index, "err", err)
					return
				}
				ctrl.SetChannelMedia(cfg.Index, img, configSampler(cfg))
			case "video":
				img, err := media.LoadVideoFrame(ctx, cfg.Path, cfg.Frame)
				if err != nil {
					log.Error("channel video failed", "channel", cfg.Index, "err", err)
					return
				}
				ctrl.SetChannelMedia(cfg.Index, img, configSampler(cfg))
			case "audio":
				ctrl.SetChannelAudio(cfg.Index, audio.NewFileDevice(cfg.Path, audio.DefaultSampleRate, true))
			case "mic":
				mic, err := audio.NewMicrophone(audio.DefaultSampleRate, 1)
				if err != nil {
					log.Error("channel microphone failed", "channel", cfg.Index, "err", err)
					return
				}
				ctrl.SetChannelAudio(cfg.Index, mic)
			}
		}(cfg)
	}
}
