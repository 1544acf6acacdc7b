package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/richinsley/shadercanvas"
)

// ShaderArgsFromResponse extracts the image and common passes and downloads
// the image pass's texture inputs. Buffer, sound and cubemap passes are
// skipped and mark the result incomplete.
func (c *Client) ShaderArgsFromResponse(ctx context.Context, shaderData *ShadertoyResponse) (*ShaderArgs, error) {
	if shaderData == nil || shaderData.Shader == nil {
		return nil, fmt.Errorf("shader data must have a 'Shader' key")
	}
	args := &ShaderArgs{Complete: true}
	log := shadercanvas.Logger()

	for _, rPass := range shaderData.Shader.RenderPass {
		switch rPass.Type {
		case "image":
			args.ShaderCode = rPass.Code
			for _, inp := range rPass.Inputs {
				if inp.Channel < 0 || inp.Channel >= len(args.Inputs) {
					continue
				}
				if inp.CType != "texture" {
					log.Warn("unsupported channel input", "channel", inp.Channel, "ctype", inp.CType)
					args.Complete = false
					continue
				}
				img, err := c.texture(ctx, inp.Src)
				if err != nil {
					return nil, fmt.Errorf("error processing image pass inputs: %w", err)
				}
				args.Inputs[inp.Channel] = &Channel{CType: inp.CType, Channel: inp.Channel, Sampler: inp.Sampler, Image: img}
			}
		case "common":
			args.CommonCode = rPass.Code
		default:
			log.Warn("unsupported render pass type", "type", rPass.Type, "name", rPass.Name)
			args.Complete = false
		}
	}
	if args.ShaderCode == "" {
		return nil, fmt.Errorf("shader has no image pass")
	}

	info := shaderData.Shader.Info
	args.Title = fmt.Sprintf(`"%s" by %s`, info.Name, info.Username)
	return args, nil
}

func (c *Client) texture(ctx context.Context, src string) (image.Image, error) {
	var cachePath string
	if c.CacheDir != "" {
		cachePath = filepath.Join(c.CacheDir, "media", filepath.Base(src))
		if data, err := os.ReadFile(cachePath); err == nil {
			if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
				return img, nil
			}
			shadercanvas.Logger().Warn("could not decode cached image, redownloading", "path", cachePath)
		}
	}

	data, err := c.get(ctx, c.MediaURL+src)
	if err != nil {
		return nil, fmt.Errorf("failed to download media %s: %w", src, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode media %s: %w", src, err)
	}
	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			if err := os.WriteFile(cachePath, data, 0o644); err != nil {
				shadercanvas.Logger().Warn("failed to cache media", "path", cachePath, "err", err)
			}
		}
	}
	return img, nil
}
