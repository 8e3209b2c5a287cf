// Package config manages user-level settings stored at ~/.kilib/config.yaml.
// Values may also come from KILIB_* environment variables or a .env file in
// the working directory. Settings cover the default library submodule path,
// the ignore-file name, the 3D model path variable and logging.
package config
